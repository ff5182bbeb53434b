package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	middleware "github.com/02priyeshraj/QR_Menu_Backend/middlewares"
)

type Options struct {
	Auth        middleware.Authenticator
	Socket      http.Handler
	CORSOrigins []string
	Log         *logger.Logger
	// Detail exposes error causes in responses.
	Detail bool
}

// New builds the full HTTP handler. Protected routes are registered before
// public ones so fixed paths like /orders/owner/list win over /orders/{id}.
func New(c *controller.Controller, opts Options) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.Logging(opts.Log), middleware.Recover(opts.Log, opts.Detail))

	router.HandleFunc("/health", controller.Health).Methods(http.MethodGet)
	if opts.Socket != nil {
		router.Handle("/socket", opts.Socket)
	}

	securedRoutes := router.PathPrefix("/api").Subrouter()
	securedRoutes.Use(middleware.Authentication(opts.Auth, opts.Detail))
	owner := middleware.RequireOwner(opts.Detail)
	ProtectedRoutes(securedRoutes, c)
	StaffProtectedRoutes(securedRoutes, c, owner)
	QRProtectedRoutes(securedRoutes, c)
	MenuProtectedRoutes(securedRoutes, c)
	OrderProtectedRoutes(securedRoutes, c)
	AnalyticsProtectedRoutes(securedRoutes, c)
	InventoryProtectedRoutes(securedRoutes, c, owner)
	PrinterProtectedRoutes(securedRoutes, c)

	publicRoutes := router.PathPrefix("/api").Subrouter()
	PublicRoutes(publicRoutes, c)
	QRPublicRoutes(publicRoutes, c)
	MenuPublicRoutes(publicRoutes, c)
	OrderPublicRoutes(publicRoutes, c)
	PushPublicRoutes(publicRoutes, c)

	return middleware.CORS(opts.CORSOrigins)(router)
}
