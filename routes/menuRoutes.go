package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
)

func MenuPublicRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/menu/{slug}", c.PublicMenu).Methods(http.MethodGet)
}

func MenuProtectedRoutes(router *mux.Router, c *controller.Controller) {
	router.HandleFunc("/menu/upload", c.UploadMenu).Methods(http.MethodPost)
	router.HandleFunc("/menu/owner", c.OwnerMenu).Methods(http.MethodGet)
	router.HandleFunc("/menu", c.UpdateMenu).Methods(http.MethodPut)

	router.HandleFunc("/menu/items", c.AddMenuItem).Methods(http.MethodPost)
	router.HandleFunc("/menu/items", c.DeleteAllMenuItems).Methods(http.MethodDelete)
	router.HandleFunc("/menu/items/{id}", c.UpdateMenuItem).Methods(http.MethodPut)
	router.HandleFunc("/menu/items/{id}", c.DeleteMenuItem).Methods(http.MethodDelete)
	router.HandleFunc("/menu/items/{id}/availability", c.SetMenuItemAvailability).Methods(http.MethodPatch)
}
