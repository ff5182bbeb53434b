package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
)

func PublicRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/auth/register", c.Register).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", c.Login).Methods(http.MethodPost)
}

func ProtectedRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/auth/me", c.Me).Methods(http.MethodGet)
	router.HandleFunc("/auth/profile", c.UpdateProfile).Methods(http.MethodPut)
}
