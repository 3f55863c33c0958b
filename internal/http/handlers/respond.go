package handlers

import (
	"log/slog"
	"net/http"

	"github.com/codefreela/userhub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// RespondAppError maps a domain error onto the wire: its code becomes
// the status and its message the body's error field. Unclassified
// failures turn into 500s; their cause is logged and, outside
// production, echoed in an extra message field.
func RespondAppError(ctx *gin.Context, err error, exposeDetail bool) {
	appErr := apperr.From(err)

	body := gin.H{"error": appErr.Message}

	if appErr.Code == http.StatusInternalServerError {
		cause := appErr.Unwrap()

		if cause != nil {
			slog.Default().ErrorContext(ctx.Request.Context(), "unhandled_error",
				"err", cause.Error(),
				"request_id", requestIDFrom(ctx),
			)

			if exposeDetail {
				body["message"] = cause.Error()
			}
		}
	}

	ctx.JSON(appErr.Code, body)
}

func RespondBadRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}
