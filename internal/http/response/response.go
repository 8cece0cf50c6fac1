package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	"github.com/yungbote/studentaid-backend/internal/platform/apierr"
	"github.com/yungbote/studentaid-backend/internal/platform/ctxutil"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	var reqID string
	if c.Request != nil {
		reqID = ctxutil.RequestIDFrom(c.Request.Context())
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message:   msg,
			Code:      code,
			RequestID: reqID,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError writes err using the status of an *apierr.Error or the HTTP mapping of
// its aggregate code. Anything else is a 500 tagged with fallbackCode.
func RespondServiceError(c *gin.Context, fallbackCode string, err error) {
	if ae, ok := apierr.As(err); ok {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	if code := domainagg.CodeOf(err); code != "" {
		RespondError(c, StatusForCode(code), string(code), err)
		return
	}
	RespondError(c, http.StatusInternalServerError, fallbackCode, err)
}

func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusUnprocessableEntity
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeInvalidState, domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError responds like RespondServiceError and stops the handler chain.
func AbortWithError(c *gin.Context, fallbackCode string, err error) {
	RespondServiceError(c, fallbackCode, err)
	c.Abort()
}
