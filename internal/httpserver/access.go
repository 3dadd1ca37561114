package httpserver

import (
	"io"
	"net/http"

	"omcis-store/internal/service/gate"

	"github.com/gin-gonic/gin"
)

// access reports the gate decision for a UI view without waiting: a session whose
// auth state is still pending gets "loading".
func (h *handlers) access(c *gin.Context) {
	view := c.Query("view")
	allowed, ok := gate.AllowedRoles(view)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view"})
		return
	}
	d := h.Gate.Evaluate(c.Request.Context(), sessionFrom(c).AuthState(), allowed)
	c.JSON(http.StatusOK, d)
}

// accessStream pushes a "decision" event whenever the decision for view changes.
func (h *handlers) accessStream(c *gin.Context) {
	view := c.Query("view")
	allowed, ok := gate.AllowedRoles(view)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view"})
		return
	}
	decisions := h.Gate.Watch(c.Request.Context(), sessionFrom(c), allowed)
	c.Stream(func(w io.Writer) bool {
		d, ok := <-decisions
		if !ok {
			return false
		}
		c.SSEvent("decision", d)
		return true
	})
}
