package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
)

func QRPublicRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/qr/scan/{token}", c.ScanQR).Methods(http.MethodPost)
}

func QRProtectedRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/qr/generate", c.GenerateQR).Methods(http.MethodPost)
	router.HandleFunc("/qr", c.ListQR).Methods(http.MethodGet)
	router.HandleFunc("/qr/{id}", c.GetQR).Methods(http.MethodGet)
	router.HandleFunc("/qr/{id}", c.DeleteQR).Methods(http.MethodDelete)
}
