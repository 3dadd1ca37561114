package httpserver

import (
	"context"
	"errors"
	"time"

	"omcis-store/internal/domain"
	"omcis-store/internal/feed"
	adminsvc "omcis-store/internal/service/admin"
	"omcis-store/internal/service/catalog"
	"omcis-store/internal/service/checkout"
	"omcis-store/internal/service/gate"
	productsvc "omcis-store/internal/service/product"
	"omcis-store/internal/service/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type SessionStore interface {
	Create(authToken string) (*session.Session, error)
	Get(id string) (*session.Session, error)
}

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*domain.Principal, string, error)
	SignIn(ctx context.Context, email, password string) (*domain.Principal, string, error)
	SignOut(ctx context.Context, token string) error
}

type CatalogService interface {
	Browse(ctx context.Context, f catalog.Filter) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Lookup(ctx context.Context, id string) (domain.Product, bool, error)
	Fresh(ctx context.Context) (map[string]domain.Product, error)
	Stream(ctx context.Context, f catalog.Filter) *feed.Subscription[[]domain.Product]
}

type AccessGate interface {
	Evaluate(ctx context.Context, auth domain.AuthState, allowed []domain.Role) gate.Decision
	Watch(ctx context.Context, src gate.AuthSource, allowed []domain.Role) <-chan gate.Decision
}

type ProductAdmin interface {
	List(ctx context.Context, search string) ([]productsvc.Listing, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CategoryAdmin interface {
	List(ctx context.Context, search string) ([]domain.Category, error)
	Create(ctx context.Context, name string) (*domain.Category, error)
	Rename(ctx context.Context, id, name string) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type OrderAdmin interface {
	List(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Advance(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error)
}

type AdminManager interface {
	Overview(ctx context.Context, search string) (*adminsvc.Overview, error)
	Promote(ctx context.Context, uid string) (*domain.AdminRecord, error)
	Demote(ctx context.Context, uid string) error
	ChangeRole(ctx context.Context, uid, role string) (*domain.AdminRecord, error)
}

// Deps groups the services the router dispatches to.
type Deps struct {
	Sessions   SessionStore
	Auth       AuthService
	Catalog    CatalogService
	Checkout   checkout.Placer
	Gate       AccessGate
	Products   ProductAdmin
	Categories CategoryAdmin
	Orders     OrderAdmin
	Admins     AdminManager
	// Feed, when set, is part of the readiness report.
	Feed FeedStatus

	AllowedOrigins []string
	// AuthWait bounds how long gated requests wait for a pending session to resolve.
	AuthWait time.Duration
}

func (d Deps) validate() error {
	switch {
	case d.Sessions == nil:
		return errors.New("httpserver: session store required")
	case d.Auth == nil:
		return errors.New("httpserver: auth service required")
	case d.Catalog == nil:
		return errors.New("httpserver: catalog required")
	case d.Checkout == nil:
		return errors.New("httpserver: checkout required")
	case d.Gate == nil:
		return errors.New("httpserver: access gate required")
	case d.Products == nil || d.Categories == nil || d.Orders == nil || d.Admins == nil:
		return errors.New("httpserver: admin services required")
	}
	return nil
}

type handlers struct {
	Deps
	logger logrus.FieldLogger
}

// buildRouter wires routes for the API.
func buildRouter(logger *logrus.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.AuthWait <= 0 {
		deps.AuthWait = 5 * time.Second
	}
	h := &handlers{Deps: deps, logger: logger.WithField("component", "http")}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", authTokenHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	checks := []readinessCheck{dbCheck(db)}
	if deps.Feed != nil {
		checks = append(checks, feedCheck(deps.Feed))
	}
	router.GET("/readyz", readyHandler(checks...))

	api := router.Group("/api")
	api.POST("/sessions", h.createSession)
	api.GET("/products", h.listProducts)
	api.GET("/products/stream", h.streamProducts)
	api.GET("/categories", h.listCategories)

	s := api.Group("", sessionMiddleware(deps.Sessions))
	s.POST("/auth/signup", h.signUp)
	s.POST("/auth/signin", h.signIn)
	s.POST("/auth/signout", h.signOut)
	s.GET("/auth/me", h.me)

	s.GET("/cart", h.getCart)
	s.DELETE("/cart", h.clearCart)
	s.POST("/cart/items", h.addCartItem)
	s.PATCH("/cart/items/:productId", h.updateCartItem)
	s.DELETE("/cart/items/:productId", h.removeCartItem)

	s.GET("/checkout", h.getCheckout)
	s.POST("/checkout/next", h.checkoutNext)
	s.POST("/checkout/back", h.checkoutBack)
	s.POST("/checkout/reset", h.checkoutReset)
	s.PUT("/checkout/address", h.checkoutAddress)
	s.POST("/checkout/finish", h.checkoutFinish)

	s.GET("/access", h.access)
	s.GET("/access/stream", h.accessStream)

	admin := s.Group("/admin")
	admin.GET("", h.guard(gate.ViewDashboard), h.dashboard)

	products := admin.Group("/produtos", h.guard(gate.ViewProducts))
	products.GET("", h.adminListProducts)
	products.POST("", h.adminCreateProduct)
	products.GET("/:id", h.adminGetProduct)
	products.PUT("/:id", h.adminUpdateProduct)
	products.DELETE("/:id", h.adminDeleteProduct)

	categories := admin.Group("/categoria", h.guard(gate.ViewCategories))
	categories.GET("", h.adminListCategories)
	categories.POST("", h.adminCreateCategory)
	categories.PUT("/:id", h.adminRenameCategory)
	categories.DELETE("/:id", h.adminDeleteCategory)

	orders := admin.Group("/pedidos", h.guard(gate.ViewOrders))
	orders.GET("", h.adminListOrders)
	orders.GET("/:id", h.adminGetOrder)
	orders.POST("/:id/status", h.adminAdvanceOrder)

	admins := admin.Group("/newAdmins", h.guard(gate.ViewAdmins))
	admins.GET("", h.adminOverview)
	admins.POST("", h.adminPromote)
	admins.PUT("/:uid", h.adminChangeRole)
	admins.DELETE("/:uid", h.adminDemote)

	return router, nil
}
