package httpserver

import (
	"context"
	"net/http"

	"omcis-store/internal/domain"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authStateResponse struct {
	Resolved  bool              `json:"resolved"`
	Principal *domain.Principal `json:"principal"`
}

type signInResponse struct {
	Principal *domain.Principal `json:"principal"`
	Token     string            `json:"token"`
}

func toAuthState(st domain.AuthState) authStateResponse {
	return authStateResponse{Resolved: st.Resolved, Principal: st.Principal}
}

// createSession opens a session. A valid X-Auth-Token restores its principal in the
// background; the response may therefore report an unresolved auth state.
func (h *handlers) createSession(c *gin.Context) {
	s, err := h.Sessions.Create(c.GetHeader(authTokenHeader))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": s.ID, "auth": toAuthState(s.AuthState())})
}

func (h *handlers) signUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password required")
		return
	}
	p, token, err := h.Auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sessionFrom(c).ResolveAuth(p, token)
	c.JSON(http.StatusCreated, signInResponse{Principal: p, Token: token})
}

func (h *handlers) signIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password required")
		return
	}
	p, token, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sessionFrom(c).ResolveAuth(p, token)
	c.JSON(http.StatusOK, signInResponse{Principal: p, Token: token})
}

func (h *handlers) signOut(c *gin.Context) {
	s := sessionFrom(c)
	if err := h.Auth.SignOut(c.Request.Context(), s.AuthToken()); err != nil {
		h.writeError(c, err)
		return
	}
	s.ResolveAuth(nil, "")
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	s := sessionFrom(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.AuthWait)
	defer cancel()
	st, err := s.AwaitAuth(ctx)
	if err != nil {
		st = s.AuthState()
	}
	c.JSON(http.StatusOK, toAuthState(st))
}
