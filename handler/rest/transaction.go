package rest

import (
	"net/http"
	"strings"

	"marketstate/core"
	"marketstate/handler/render"
	"marketstate/handler/request"
)

const maxTransactionsLimit = 500

// transactions of one position or market, newest first
func transactionsHandler(transactions core.IPositionTransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Entity string `json:"entity" valid:"required"`
			Limit  int    `json:"limit"`
		}

		if err := request.BindQuery(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		limit := params.Limit
		if limit <= 0 || limit > maxTransactionsLimit {
			limit = maxTransactionsLimit
		}

		list, err := transactions.ListByEntity(r.Context(), strings.ToLower(params.Entity), limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		if list == nil {
			list = []*core.PositionTransaction{}
		}

		render.JSON(w, list)
	}
}
