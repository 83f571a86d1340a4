package rest

import (
	"net/http"

	"marketstate/core"
	"marketstate/handler/render"

	"github.com/go-chi/chi"
	"github.com/twitchtv/twirp"
)

// Handle handle rest api request
func Handle(
	markets core.IMarketStore,
	accounts core.IAccountStore,
	positions core.IPositionStore,
	transactions core.IPositionTransactionStore,
	gate core.IUpdateGate,
	blocks core.ILogSource,
	checkpoints core.ICheckpointStore,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, twirp.NotFoundError("not found"))
	})

	router.Get("/markets", listMarketsHandler(markets))
	router.Get("/markets/{address}", marketHandler(markets))
	router.Post("/markets/{address}/refresh", refreshMarketHandler(gate, blocks, checkpoints))
	router.Get("/accounts/{address}", accountHandler(accounts, positions))
	router.Get("/transactions", transactionsHandler(transactions))

	return router
}
