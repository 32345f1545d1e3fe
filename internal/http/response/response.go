package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/games-aggregator/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr classifies err through apierr and writes the envelope. Internal errors are logged
// by the request logger; their message is not echoed to the client.
func RespondErr(c *gin.Context, err error) {
	ae := apierr.From(err)
	_ = c.Error(err)
	if ae.Status >= http.StatusInternalServerError && ae.Status != http.StatusServiceUnavailable && ae.Status != http.StatusGatewayTimeout {
		RespondError(c, ae.Status, ae.Code, nil)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
