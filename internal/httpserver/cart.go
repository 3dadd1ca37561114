package httpserver

import (
	"net/http"

	"omcis-store/internal/domain"
	"omcis-store/internal/service/cart"
	"omcis-store/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

type cartResponse struct {
	Cart   cart.Snapshot `json:"cart"`
	Notice *cart.Notice  `json:"notice,omitempty"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) getCart(c *gin.Context) {
	var snap cart.Snapshot
	_ = sessionFrom(c).Do(func(ct *cart.Cart, _ *checkout.Wizard) error {
		snap = ct.Snapshot()
		return nil
	})
	c.JSON(http.StatusOK, cartResponse{Cart: snap})
}

// clearCart abandons the cart and closes the checkout.
func (h *handlers) clearCart(c *gin.Context) {
	var snap cart.Snapshot
	_ = sessionFrom(c).Do(func(ct *cart.Cart, w *checkout.Wizard) error {
		ct.Clear()
		w.Reset()
		snap = ct.Snapshot()
		return nil
	})
	c.JSON(http.StatusOK, cartResponse{Cart: snap})
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId required")
		return
	}
	p, ok, err := h.Catalog.Lookup(c.Request.Context(), req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !ok {
		h.writeError(c, domain.ErrNotFound)
		return
	}
	var resp cartResponse
	_ = sessionFrom(c).Do(func(ct *cart.Cart, _ *checkout.Wizard) error {
		resp.Notice = ct.Add(p)
		resp.Cart = ct.Snapshot()
		return nil
	})
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity required")
		return
	}
	id := c.Param("productId")
	var resp cartResponse
	err := sessionFrom(c).Do(func(ct *cart.Cart, _ *checkout.Wizard) error {
		if !ct.Has(id) {
			return domain.ErrNotFound
		}
		resp.Notice = ct.UpdateQuantity(id, *req.Quantity)
		resp.Cart = ct.Snapshot()
		return nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	id := c.Param("productId")
	var resp cartResponse
	_ = sessionFrom(c).Do(func(ct *cart.Cart, _ *checkout.Wizard) error {
		ct.Remove(id)
		resp.Cart = ct.Snapshot()
		return nil
	})
	c.JSON(http.StatusOK, resp)
}
