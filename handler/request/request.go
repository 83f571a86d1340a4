package request

import (
	"net/http"
	"strings"

	"marketstate/core"
	"marketstate/handler/codes"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
	"github.com/twitchtv/twirp"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.SetAliasTag("json")
}

// BindQuery decodes the url query into v and validates its valid tags
func BindQuery(r *http.Request, v interface{}) error {
	if err := decoder.Decode(v, r.URL.Query()); err != nil {
		return codes.With(twirp.InvalidArgumentError("query", err.Error()), core.ErrInvalidArgument)
	}

	if _, err := govalidator.ValidateStruct(v); err != nil {
		return codes.With(twirp.InvalidArgumentError("query", err.Error()), core.ErrInvalidArgument)
	}

	return nil
}

// Address url param key as a lower case address
func Address(r *http.Request, key string) (string, error) {
	addr := chi.URLParam(r, key)
	if !IsAddress(addr) {
		return "", codes.With(twirp.InvalidArgumentError(key, "is not an address"), core.ErrInvalidAddress)
	}

	return strings.ToLower(addr), nil
}

// IsAddress 0x prefixed 20 bytes hex
func IsAddress(s string) bool {
	return govalidator.Matches(s, "^0x[0-9a-fA-F]{40}$")
}
