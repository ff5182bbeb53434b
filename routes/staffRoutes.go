package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
)

// StaffProtectedRoutes are owner only; owner wraps each handler.
func StaffProtectedRoutes(router *mux.Router, c *controller.Controller, owner func(http.Handler) http.Handler) {
	router.Handle("/staff", owner(http.HandlerFunc(c.ListStaff))).Methods(http.MethodGet)
	router.Handle("/staff", owner(http.HandlerFunc(c.CreateStaff))).Methods(http.MethodPost)
	router.Handle("/staff/{id}", owner(http.HandlerFunc(c.UpdateStaff))).Methods(http.MethodPut)
	router.Handle("/staff/{id}", owner(http.HandlerFunc(c.DeleteStaff))).Methods(http.MethodDelete)
}
