package httpserver

import (
	"io"
	"net/http"
	"strings"

	"omcis-store/internal/service/catalog"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseFilter(c *gin.Context) (catalog.Filter, error) {
	f := catalog.Filter{
		Search:   c.Query("search"),
		Category: strings.TrimSpace(c.Query("category")),
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return catalog.Filter{}, err
		}
		*dst = &d
	}
	return f, nil
}

func (h *handlers) listProducts(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		badRequest(c, "invalid price filter")
		return
	}
	products, err := h.Catalog.Browse(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// streamProducts pushes the filtered listing as server-sent events, one "snapshot"
// event per change, until the client goes away.
func (h *handlers) streamProducts(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		badRequest(c, "invalid price filter")
		return
	}
	ctx := c.Request.Context()
	sub := h.Catalog.Stream(ctx, f)
	defer sub.Close()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return false
			}
			c.SSEvent("snapshot", gin.H{"products": snap})
			return true
		}
	})
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.Catalog.Categories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}
