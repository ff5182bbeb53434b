package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
)

func PrinterProtectedRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/printer/status", c.PrinterStatus).Methods(http.MethodGet)
	router.HandleFunc("/printer/test", c.TestPrinter).Methods(http.MethodPost)
	router.HandleFunc("/printer/print", c.PrintBill).Methods(http.MethodPost)
}
