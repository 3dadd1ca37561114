package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"omcis-store/internal/domain"
	adminsvc "omcis-store/internal/service/admin"
	"omcis-store/internal/service/auth"
	"omcis-store/internal/service/checkout"
	"omcis-store/internal/service/gate"
	"omcis-store/internal/service/session"

	"github.com/gin-gonic/gin"
)

type ctxKey string

const (
	sessionCtxKey ctxKey = "session"
	roleCtxKey    ctxKey = "role"

	authTokenHeader = "X-Auth-Token"
)

// sessionMiddleware resolves the session named by the bearer token.
func sessionMiddleware(store SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := bearerToken(c.GetHeader("Authorization"))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session token required"})
			return
		}
		s, err := store.Get(id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, s)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// sessionLogID shortens a session handle for logs; the full value is a credential.
func sessionLogID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sessionFrom(c *gin.Context) *session.Session {
	s, _ := c.Request.Context().Value(sessionCtxKey).(*session.Session)
	return s
}

// guard lets a request through only when the gate renders view for the session's
// principal. It waits for a pending session to resolve first.
func (h *handlers) guard(view string) gin.HandlerFunc {
	allowed, ok := gate.AllowedRoles(view)
	if !ok {
		panic("httpserver: no access rule for " + view)
	}
	return func(c *gin.Context) {
		s := sessionFrom(c)
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.AuthWait)
		defer cancel()
		auth, err := s.AwaitAuth(ctx)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authentication pending"})
			return
		}
		d := h.Gate.Evaluate(c.Request.Context(), auth, allowed)
		switch d.Outcome {
		case gate.OutcomeRender:
			ctx := context.WithValue(c.Request.Context(), roleCtxKey, d.State)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		case gate.OutcomeRedirect:
			status := http.StatusForbidden
			if d.State == gate.Unauthenticated {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": string(d.State), "redirect": d.Redirect})
		default:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authentication pending"})
		}
	}
}

// writeError maps service errors onto HTTP statuses.
func (h *handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrStockExceeded):
		status = http.StatusConflict
	case errors.Is(err, checkout.ErrCheckoutFailed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, checkout.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, auth.ErrEmailInUse),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, checkout.ErrStepNotAllowed):
		status = http.StatusConflict
	case errors.Is(err, adminsvc.ErrMasterImmutable):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidAddress),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	body := gin.H{"error": msg}
	var addrErr *checkout.AddressError
	if errors.As(err, &addrErr) {
		body["missing"] = addrErr.Missing
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
