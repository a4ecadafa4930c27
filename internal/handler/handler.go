// Package handler exposes the storefront and admin HTTP API on echo.
// Handlers are thin adapters: they bind and validate payloads, delegate to
// the domain services and repositories, and map errors centrally.
package handler

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/shopfront/shopfront/internal/domain/auth"
	"github.com/shopfront/shopfront/internal/domain/landing"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/product"
)

// Handler carries the domain dependencies of all HTTP endpoints.
type Handler struct {
	products product.Repository
	orders   *order.Service
	pages    landing.Repository
	auth     *auth.Service
	validate *validator.Validate
}

// New constructs a Handler with the required domain dependencies.
func New(
	products product.Repository,
	orders *order.Service,
	pages landing.Repository,
	authSvc *auth.Service,
) *Handler {
	v := validator.New()
	// Report field errors under their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		products: products,
		orders:   orders,
		pages:    pages,
		auth:     authSvc,
		validate: v,
	}
}

// Router builds the echo engine with the public storefront routes, the auth
// routes, and the JWT-gated admin routes.
func (h *Handler) Router(jwtSecret []byte) http.Handler {
	e := echo.New()

	api := e.Group("/api")

	// Public storefront.
	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/landing-pages/:slug", h.getLandingPageBySlug)
	api.POST("/checkout", h.checkout)

	// Auth.
	ag := api.Group("/auth")
	ag.POST("/sign-up", h.signUp)
	ag.POST("/sign-in", h.signIn)
	ag.POST("/sign-out", h.signOut)
	ag.GET("/session", h.session)

	// Admin dashboard, gated by bearer session tokens.
	admin := api.Group("/admin", echojwt.WithConfig(echojwt.Config{
		SigningKey: jwtSecret,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	admin.GET("/products", h.listProducts)
	admin.GET("/products/:id", h.getProduct)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)

	admin.GET("/orders", h.listOrders)
	admin.GET("/orders/:id", h.getOrder)
	admin.POST("/orders", h.createOrder)
	admin.PUT("/orders/:id", h.updateOrder)
	admin.DELETE("/orders/:id", h.deleteOrder)

	admin.GET("/landing-pages", h.listLandingPages)
	admin.POST("/landing-pages", h.createLandingPage)
	admin.DELETE("/landing-pages/:id", h.deleteLandingPage)

	return e
}
