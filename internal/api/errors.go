package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chefrelay/internal/imaging"
	"chefrelay/internal/llm"
	"chefrelay/internal/recipe"
)

// Error kinds recorded in the request journal.
const (
	KindInvalidBody   = "invalid_body"
	KindBodyTooLarge  = "body_too_large"
	KindProfile       = "unknown_profile"
	KindValidation    = "validation"
	KindUpstream      = "upstream"
	KindNormalization = "normalization"
	KindFetch         = "fetch"
	KindDecode        = "decode"
	KindInternal      = "internal"
)

const (
	msgMissingParameters = "Missing parameters"
	msgInvalidBody       = "Invalid JSON body"
	msgUnknownProfile    = "Unknown profile"
	msgBodyTooLarge      = "Request body too large"
)

// errInvalidBody is returned when the request body is not a JSON object.
var errInvalidBody = errors.New("request body is not a JSON object")

// errBodyTooLarge is returned when the request body exceeds MaxBodyBytes.
var errBodyTooLarge = errors.New("request body exceeds the size limit")

// ValidationError lists required request fields that were absent, in the
// order the route declares them.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return msgMissingParameters
}

// respondError is the only place error kinds are mapped to HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		verr *ValidationError
		nerr *recipe.NormalizationError
		uerr *llm.UpstreamError
		ferr *imaging.FetchError
		derr *imaging.DecodeError
	)

	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}
	kind := KindInternal

	switch {
	case errors.Is(err, errInvalidBody):
		status, kind = http.StatusBadRequest, KindInvalidBody
		body = gin.H{"error": msgInvalidBody}
	case errors.Is(err, errBodyTooLarge):
		status, kind = http.StatusRequestEntityTooLarge, KindBodyTooLarge
		body = gin.H{"error": msgBodyTooLarge, "limit": MaxBodyBytes}
	case errors.Is(err, recipe.ErrUnknownProfile):
		status, kind = http.StatusBadRequest, KindProfile
		body = gin.H{"error": msgUnknownProfile, "profiles": recipe.Profiles()}
	case errors.As(err, &verr):
		status, kind = http.StatusBadRequest, KindValidation
		body = gin.H{"error": msgMissingParameters, "missing": verr.Missing}
	case errors.As(err, &nerr):
		kind = KindNormalization
		body = gin.H{"error": nerr.Message, "raw": nerr.Raw}
	case errors.As(err, &uerr):
		kind = KindUpstream
	case errors.As(err, &ferr):
		kind = KindFetch
	case errors.As(err, &derr):
		kind = KindDecode
	}

	c.Set(errorKindKey, kind)
	_ = c.Error(err)

	fields := []zap.Field{
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("kind", kind),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", fields...)
	} else {
		h.Logger.Info("request rejected", fields...)
	}

	c.AbortWithStatusJSON(status, body)
}
