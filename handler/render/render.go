package render

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"marketstate/handler/codes"

	"github.com/sirupsen/logrus"
	"github.com/twitchtv/twirp"
)

// H map
type H map[string]interface{}

// ResponseErrorMessageAsHint internal error msg as hint
var ResponseErrorMessageAsHint bool

func init() {
	v := os.Getenv("RESPONSE_ERROR_MESSAGE_AS_HINT")
	ResponseErrorMessageAsHint, _ = strconv.ParseBool(v)
}

type dataResponse struct {
	Data interface{} `json:"data"`
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Hint string `json:"hint,omitempty"`
}

func write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render: encode response")
	}
}

// JSON render v as {"data": v}
func JSON(w http.ResponseWriter, v interface{}) {
	write(w, http.StatusOK, dataResponse{Data: v})
}

// Raw render v as is
func Raw(w http.ResponseWriter, v interface{}) {
	write(w, http.StatusOK, v)
}

// Error write err, non twirp errors are reported as internal errors
func Error(w http.ResponseWriter, err error) {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	resp := errorResponse{
		Code: codes.Get(twerr),
		Msg:  twerr.Msg(),
	}

	status := twirp.ServerHTTPStatusFromErrorCode(twerr.Code())
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).Errorln("render: internal error")
		resp.Msg = http.StatusText(status)
		if ResponseErrorMessageAsHint {
			resp.Hint = twerr.Msg()
		}
	}

	write(w, status, resp)
}
