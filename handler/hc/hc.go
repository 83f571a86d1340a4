package hc

import (
	"net/http"
	"time"

	"marketstate/core"
	"marketstate/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Handle handle hc request
func Handle(ver string, checkpoints core.ICheckpointStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver, checkpoints))
	return r
}

func handle(version string, checkpoints core.ICheckpointStore) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := time.Since(b).Truncate(time.Millisecond)

		synced, err := checkpoints.Checkpoint(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.Raw(w, render.H{
			"uptime":       uptime.String(),
			"version":      version,
			"synced_block": synced,
		})
	}
}
