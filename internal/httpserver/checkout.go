package httpserver

import (
	"context"
	"errors"
	"net/http"

	"omcis-store/internal/domain"
	"omcis-store/internal/service/cart"
	"omcis-store/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

type checkoutResponse struct {
	Checkout checkout.State `json:"checkout"`
	Cart     cart.Snapshot  `json:"cart"`
	Notices  []cart.Notice  `json:"notices,omitempty"`
}

func (h *handlers) checkoutState(c *gin.Context, notices []cart.Notice) {
	var resp checkoutResponse
	_ = sessionFrom(c).Do(func(ct *cart.Cart, w *checkout.Wizard) error {
		resp.Checkout = w.State()
		resp.Cart = ct.Snapshot()
		return nil
	})
	resp.Notices = notices
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) getCheckout(c *gin.Context) {
	h.checkoutState(c, nil)
}

// checkoutNext advances the wizard. Leaving the summary re-validates the cart against
// current stock first.
func (h *handlers) checkoutNext(c *gin.Context) {
	s := sessionFrom(c)
	var step checkout.Step
	_ = s.Do(func(_ *cart.Cart, w *checkout.Wizard) error {
		step = w.Step()
		return nil
	})
	var fresh map[string]domain.Product
	if step == checkout.StepSummary {
		var err error
		if fresh, err = h.Catalog.Fresh(c.Request.Context()); err != nil {
			h.writeError(c, err)
			return
		}
	}

	var notices []cart.Notice
	err := s.Do(func(ct *cart.Cart, w *checkout.Wizard) error {
		if fresh != nil && w.Step() == checkout.StepSummary {
			notices = ct.Reconcile(lookupIn(fresh))
		}
		return w.Next(ct)
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.checkoutState(c, notices)
}

func (h *handlers) checkoutBack(c *gin.Context) {
	err := sessionFrom(c).Do(func(_ *cart.Cart, w *checkout.Wizard) error {
		return w.Back()
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.checkoutState(c, nil)
}

func (h *handlers) checkoutReset(c *gin.Context) {
	_ = sessionFrom(c).Do(func(_ *cart.Cart, w *checkout.Wizard) error {
		w.Reset()
		return nil
	})
	h.checkoutState(c, nil)
}

func (h *handlers) checkoutAddress(c *gin.Context) {
	var addr domain.ShippingAddress
	if err := c.ShouldBindJSON(&addr); err != nil {
		badRequest(c, "invalid address payload")
		return
	}
	err := sessionFrom(c).Do(func(_ *cart.Cart, w *checkout.Wizard) error {
		return w.SetAddress(addr)
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.checkoutState(c, nil)
}

// checkoutFinish places the order. A stock shortfall at commit re-validates the cart
// and answers 409 with the resulting notices; the wizard stays on payment.
func (h *handlers) checkoutFinish(c *gin.Context) {
	s := sessionFrom(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.AuthWait)
	auth, err := s.AwaitAuth(ctx)
	cancel()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication pending"})
		return
	}

	var orderID string
	err = s.Do(func(ct *cart.Cart, w *checkout.Wizard) error {
		id, err := w.Finish(c.Request.Context(), h.Checkout, auth.Principal, ct)
		orderID = id
		return err
	})
	if err == nil {
		resp := gin.H{"orderId": orderID}
		_ = s.Do(func(ct *cart.Cart, w *checkout.Wizard) error {
			resp["checkout"] = w.State()
			resp["cart"] = ct.Snapshot()
			return nil
		})
		c.JSON(http.StatusCreated, resp)
		return
	}

	if !errors.Is(err, domain.ErrStockExceeded) {
		h.writeError(c, err)
		return
	}
	fresh, ferr := h.Catalog.Fresh(c.Request.Context())
	if ferr != nil {
		h.logger.WithError(ferr).WithField("session", sessionLogID(s.ID)).Error("checkout: cart re-validation after stock shortfall failed")
		h.writeError(c, err)
		return
	}
	var notices []cart.Notice
	var snap cart.Snapshot
	_ = s.Do(func(ct *cart.Cart, _ *checkout.Wizard) error {
		notices = ct.Reconcile(lookupIn(fresh))
		snap = ct.Snapshot()
		return nil
	})
	c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "notices": notices, "cart": snap})
}

func lookupIn(products map[string]domain.Product) cart.Lookup {
	return func(id string) (domain.Product, bool) {
		p, ok := products[id]
		return p, ok
	}
}
