package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
)

// InventoryProtectedRoutes are owner only; staff get 403.
func InventoryProtectedRoutes(router *mux.Router, c *controller.Controller, owner func(http.Handler) http.Handler) {
	router.Handle("/inventory", owner(http.HandlerFunc(c.ListInventory))).Methods(http.MethodGet)
	router.Handle("/inventory", owner(http.HandlerFunc(c.AddInventoryItem))).Methods(http.MethodPost)
	router.Handle("/inventory/{id}", owner(http.HandlerFunc(c.UpdateInventoryItem))).Methods(http.MethodPut)
	router.Handle("/inventory/{id}", owner(http.HandlerFunc(c.DeleteInventoryItem))).Methods(http.MethodDelete)
}
