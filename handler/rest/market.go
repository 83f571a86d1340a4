package rest

import (
	"net/http"

	"marketstate/core"
	"marketstate/handler/codes"
	"marketstate/handler/render"
	"marketstate/handler/request"
	"marketstate/handler/views"
	"marketstate/internal/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store"
	"github.com/twitchtv/twirp"
)

func listMarketsHandler(markets core.IMarketStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := markets.All(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.MarketViews(all))
	}
}

func marketHandler(markets core.IMarketStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address, err := request.Address(r, "address")
		if err != nil {
			render.Error(w, err)
			return
		}

		market, err := markets.Find(r.Context(), address)
		if err != nil {
			if store.IsErrNotFound(err) {
				err = codes.With(twirp.NotFoundError("market not found"), core.ErrMarketNotFound)
			}

			render.Error(w, err)
			return
		}

		render.JSON(w, views.MarketView(market))
	}
}

// recompute the market at the last synced block, creating it when unknown
func refreshMarketHandler(gate core.IUpdateGate, blocks core.ILogSource, checkpoints core.ICheckpointStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		address, err := request.Address(r, "address")
		if err != nil {
			render.Error(w, err)
			return
		}

		head, err := blocks.Head(ctx)
		if err != nil {
			render.Error(w, err)
			return
		}

		checkpoint, err := checkpoints.Checkpoint(ctx)
		if err != nil {
			render.Error(w, err)
			return
		}

		block, ok := compound.RefreshBlock(checkpoint, head)
		if !ok {
			render.Error(w, twirp.NewError(twirp.FailedPrecondition, "no block synced yet"))
			return
		}

		timestamp, err := blocks.BlockTimestamp(ctx, block)
		if err != nil {
			render.Error(w, err)
			return
		}

		market, err := gate.EnsureUpdated(ctx, core.Trigger{
			Market:    address,
			Block:     block,
			Timestamp: timestamp,
		})
		if err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("refresh market", address)
			render.Error(w, err)
			return
		}

		render.JSON(w, views.MarketView(market))
	}
}
