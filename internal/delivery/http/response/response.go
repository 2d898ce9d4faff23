package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/lexiquiz/internal/service"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable"`
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

// RespondServiceError maps an engine error to its status code and envelope.
func RespondServiceError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	if kind == "" {
		kind = service.KindInternal
	}

	msg := err.Error()
	if kind == service.KindInternal {
		msg = "internal error"
	}
	_ = c.Error(err)

	c.JSON(StatusFor(kind), ErrorEnvelope{
		Error: APIError{
			Message:   msg,
			Code:      string(kind),
			Retryable: kind.Retryable(),
		},
	})
}

// StatusFor returns the HTTP status of an error kind.
func StatusFor(kind service.Kind) int {
	switch {
	case kind.IsValidation():
		return http.StatusBadRequest
	case kind == service.KindNotFound:
		return http.StatusNotFound
	case kind.IsStateConflict():
		return http.StatusConflict
	case kind == service.KindPreconditionFailure:
		return http.StatusUnprocessableEntity
	case kind == service.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
