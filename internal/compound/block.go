package compound

// NextRange next block range [from, to] after checkpoint bounded by head and batch.
// ok is false when checkpoint already reached head.
func NextRange(checkpoint, head, batch int64) (from, to int64, ok bool) {
	if batch <= 0 {
		batch = 1
	}

	from = checkpoint + 1
	if from > head {
		return 0, 0, false
	}

	to = from + batch - 1
	if to > head {
		to = head
	}

	return from, to, true
}

// RefreshBlock highest block markets may be recomputed at without running ahead of the
// event sync. ok is false until the first range was synced.
func RefreshBlock(checkpoint, head int64) (block int64, ok bool) {
	if checkpoint <= 0 || head <= 0 {
		return 0, false
	}

	if checkpoint < head {
		return checkpoint, true
	}

	return head, true
}
