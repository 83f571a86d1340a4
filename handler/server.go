package handler

import (
	"net/http"

	"marketstate/core"
	"marketstate/handler/hc"
	"marketstate/handler/render"
	"marketstate/handler/rest"
	"marketstate/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
	"github.com/twitchtv/twirp"
)

// Server server
type Server struct {
	version      string
	markets      core.IMarketStore
	accounts     core.IAccountStore
	positions    core.IPositionStore
	transactions core.IPositionTransactionStore
	checkpoints  core.ICheckpointStore
	gate         core.IUpdateGate
	blocks       core.ILogSource
}

// New new server function
func New(
	version string,
	markets core.IMarketStore,
	accounts core.IAccountStore,
	positions core.IPositionStore,
	transactions core.IPositionTransactionStore,
	checkpoints core.ICheckpointStore,
	gate core.IUpdateGate,
	blocks core.ILogSource,
) Server {
	return Server{
		version:      version,
		markets:      markets,
		accounts:     accounts,
		positions:    positions,
		transactions: transactions,
		checkpoints:  checkpoints,
		gate:         gate,
		blocks:       blocks,
	}
}

// Handler root handler with /hc, /metrics and /api mounted
func (s Server) Handler() http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.NewCompressor(5).Handler)

	mux.Mount("/hc", hc.Handle(s.version, s.checkpoints))
	mux.Mount("/metrics", metrics.Handler())
	mux.Mount("/api", s.HandleRestAPI())

	return mux
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, twirp.NotFoundError("not found"))
	})

	r.Mount("/", rest.Handle(s.markets, s.accounts, s.positions, s.transactions, s.gate, s.blocks, s.checkpoints))
	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
