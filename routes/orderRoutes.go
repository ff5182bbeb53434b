package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
)

func OrderPublicRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/orders", c.PlaceOrder).Methods(http.MethodPost)
	router.HandleFunc("/orders/customer/{phone}", c.CustomerOrders).Methods(http.MethodGet)
	router.HandleFunc("/orders/{id}", c.GetOrder).Methods(http.MethodGet)
}

func OrderProtectedRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/orders/owner/list", c.OwnerOrders).Methods(http.MethodGet)

	router.HandleFunc("/orders/{id}/status", c.UpdateOrderStatus).Methods(http.MethodPut)
	router.HandleFunc("/orders/{id}/ready", c.MarkOrderReady).Methods(http.MethodPut)
	router.HandleFunc("/orders/{id}/complete", c.CompleteOrder).Methods(http.MethodPut)
	router.HandleFunc("/orders/{id}", c.DeleteOrder).Methods(http.MethodDelete)
}
