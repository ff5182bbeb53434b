package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
)

func PushPublicRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/push/public-key", c.PushPublicKey).Methods(http.MethodGet)
	router.HandleFunc("/push/subscribe", c.PushSubscribe).Methods(http.MethodPost)
	router.HandleFunc("/push/test", c.PushTest).Methods(http.MethodPost)
}
