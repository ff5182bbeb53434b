package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
)

func AnalyticsProtectedRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/analytics/stats", c.AnalyticsStats).Methods(http.MethodGet)
	router.HandleFunc("/analytics/orders", c.OrderHistory).Methods(http.MethodGet)
	router.HandleFunc("/analytics/customers", c.CustomerInsights).Methods(http.MethodGet)

	router.HandleFunc("/dashboard/stats", c.DashboardStats).Methods(http.MethodGet)
	router.HandleFunc("/dashboard/activity", c.DashboardActivity).Methods(http.MethodGet)
	router.HandleFunc("/dashboard/qr-summary", c.QRSummary).Methods(http.MethodGet)
}
