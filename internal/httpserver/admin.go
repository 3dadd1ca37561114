package httpserver

import (
	"net/http"

	"omcis-store/internal/domain"
	ordersvc "omcis-store/internal/service/order"
	productsvc "omcis-store/internal/service/product"

	"github.com/gin-gonic/gin"
)

func (h *handlers) dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"principal": sessionFrom(c).Principal(),
		"role":      c.Request.Context().Value(roleCtxKey),
	})
}

func (h *handlers) adminListProducts(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *handlers) adminGetProduct(c *gin.Context) {
	p, err := h.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) adminCreateProduct(c *gin.Context) {
	var in productsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	p, err := h.Products.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) adminUpdateProduct(c *gin.Context) {
	var in productsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	p, err := h.Products.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) adminDeleteProduct(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *handlers) adminListCategories(c *gin.Context) {
	cats, err := h.Categories.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *handlers) adminCreateCategory(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name required")
		return
	}
	cat, err := h.Categories.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *handlers) adminRenameCategory(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name required")
		return
	}
	cat, err := h.Categories.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handlers) adminDeleteCategory(c *gin.Context) {
	if err := h.Categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// adminListOrders accepts repeated or comma separated ?status= values, or "all".
func (h *handlers) adminListOrders(c *gin.Context) {
	statuses, err := ordersvc.ParseStatusFilter(c.QueryArray("status"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	orders, err := h.Orders.List(c.Request.Context(), statuses)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "statuses": statuses})
}

func (h *handlers) adminGetOrder(c *gin.Context) {
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handlers) adminAdvanceOrder(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status required")
		return
	}
	to, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		badRequest(c, "unknown order status")
		return
	}
	o, err := h.Orders.Advance(c.Request.Context(), c.Param("id"), to)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) adminOverview(c *gin.Context) {
	ov, err := h.Admins.Overview(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

type promoteRequest struct {
	UID string `json:"uid" binding:"required"`
}

func (h *handlers) adminPromote(c *gin.Context) {
	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "uid required")
		return
	}
	rec, err := h.Admins.Promote(c.Request.Context(), req.UID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *handlers) adminChangeRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "role required")
		return
	}
	rec, err := h.Admins.ChangeRole(c.Request.Context(), c.Param("uid"), req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) adminDemote(c *gin.Context) {
	if err := h.Admins.Demote(c.Request.Context(), c.Param("uid")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
