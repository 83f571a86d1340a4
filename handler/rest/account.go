package rest

import (
	"net/http"

	"marketstate/core"
	"marketstate/handler/codes"
	"marketstate/handler/render"
	"marketstate/handler/request"
	"marketstate/handler/views"

	"github.com/fox-one/pkg/store"
	"github.com/twitchtv/twirp"
)

func accountHandler(accounts core.IAccountStore, positions core.IPositionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		address, err := request.Address(r, "address")
		if err != nil {
			render.Error(w, err)
			return
		}

		account, err := accounts.Find(ctx, address)
		if err != nil {
			if store.IsErrNotFound(err) {
				err = codes.With(twirp.NotFoundError("account not found"), core.ErrAccountNotFound)
			}

			render.Error(w, err)
			return
		}

		list, err := positions.FindByAccount(ctx, address)
		if err != nil {
			render.Error(w, err)
			return
		}

		if list == nil {
			list = []*core.AccountMarketPosition{}
		}

		render.JSON(w, views.Account{
			Account:   account,
			Positions: list,
		})
	}
}
