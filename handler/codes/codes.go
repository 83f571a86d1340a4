package codes

import (
	"strconv"

	"marketstate/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"
)

// With with specified error
func With(err error, code core.ErrorCode) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, code.String())
}

// Get get error code
func Get(err twirp.Error) int {
	if v := err.Meta(CustomCodeKey); v != "" {
		if code, e := strconv.Atoi(v); e == nil {
			return code
		}
	}

	switch err.Code() {
	case twirp.InvalidArgument:
		return int(core.ErrInvalidArgument)
	case twirp.Internal, twirp.Unknown:
		return int(core.ErrUnknown)
	default:
		return twirp.ServerHTTPStatusFromErrorCode(err.Code())
	}
}
