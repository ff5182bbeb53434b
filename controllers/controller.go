package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/accounts"
	"github.com/02priyeshraj/QR_Menu_Backend/analytics"
	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/inventory"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	middleware "github.com/02priyeshraj/QR_Menu_Backend/middlewares"
	"github.com/02priyeshraj/QR_Menu_Backend/menu"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/orders"
	"github.com/02priyeshraj/QR_Menu_Backend/printer"
	"github.com/02priyeshraj/QR_Menu_Backend/push"
	"github.com/02priyeshraj/QR_Menu_Backend/qr"
	"github.com/02priyeshraj/QR_Menu_Backend/tenant"
)

const requestTimeout = 30 * time.Second

// Controller holds the services behind every HTTP handler.
type Controller struct {
	Accounts  *accounts.Service
	QR        *qr.Registry
	Orders    *orders.Engine
	Menu      *menu.Catalog
	Extractor *menu.Chain
	Push      *push.Registry
	Analytics *analytics.Aggregator
	Inventory *inventory.Service
	Printer   *printer.Service
	Log       *logger.Logger
	// Detail exposes wrapped error causes in responses. Off in production.
	Detail bool
}

func (c *Controller) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// fail logs server-side failures and writes the error envelope.
func (c *Controller) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if kind := apperrors.KindOf(err); kind == apperrors.KindInternal || kind == apperrors.KindUpstream {
		c.Log.Error(logger.RequestID(r.Context()), action, apperrors.Message(err), err, "path", r.URL.Path)
	}
	helper.Fail(w, err, c.Detail)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request body", err)
	}
	return nil
}

func principal(r *http.Request) (*models.User, error) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		return nil, apperrors.Unauthorized("Not authorized")
	}
	return user, nil
}

func tenantOf(r *http.Request) (*models.User, primitive.ObjectID, error) {
	user, err := principal(r)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	id, err := tenant.EffectiveID(user)
	return user, id, err
}

func Health(w http.ResponseWriter, r *http.Request) {
	helper.Success(w, http.StatusOK, "Server is running", map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}
