// Package app wires the services, transports and HTTP surface from a Config
// and a set of stores.
package app

import (
	"net/http"
	"time"

	"github.com/02priyeshraj/QR_Menu_Backend/accounts"
	"github.com/02priyeshraj/QR_Menu_Backend/analytics"
	"github.com/02priyeshraj/QR_Menu_Backend/config"
	controller "github.com/02priyeshraj/QR_Menu_Backend/controllers"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/inventory"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/menu"
	"github.com/02priyeshraj/QR_Menu_Backend/notify"
	"github.com/02priyeshraj/QR_Menu_Backend/orders"
	"github.com/02priyeshraj/QR_Menu_Backend/printer"
	"github.com/02priyeshraj/QR_Menu_Backend/push"
	"github.com/02priyeshraj/QR_Menu_Backend/qr"
	"github.com/02priyeshraj/QR_Menu_Backend/realtime"
	"github.com/02priyeshraj/QR_Menu_Backend/routes"
	"github.com/02priyeshraj/QR_Menu_Backend/sms"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
)

type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Stores    store.Stores
	Directory *realtime.Directory
	Notifier  *notify.Coordinator
	Handler   http.Handler
}

func New(cfg *config.Config, stores store.Stores, log *logger.Logger) *App {
	client := &http.Client{Timeout: 30 * time.Second}

	var transport push.Transport
	if cfg.Push.Enabled() {
		transport = push.NewWebPush(cfg.Push, client)
	} else {
		log.Warn("", "push_disabled", "VAPID keys not set; web push is disabled")
	}
	pushRegistry := push.NewRegistry(stores.Push, transport, cfg.Push.VAPIDPublicKey, log)

	dir := realtime.NewDirectory(log)
	notifier := notify.NewCoordinator(dir, pushRegistry, sms.New(cfg.SMS, log), log)

	codes := qr.NewRegistry(stores.QRCodes, qr.PNGRenderer{}, cfg.FrontendURL, log)
	providers := menu.Providers(cfg.AI, client)
	if len(providers) == 0 {
		log.Warn("", "ai_disabled", "no AI provider keys set; menu uploads fall back to text parsing")
	}

	c := &controller.Controller{
		Accounts: accounts.NewService(stores.Users,
			helper.NewTokenManager(cfg.SecretKey, cfg.TokenTTL),
			helper.Hasher{Cost: cfg.BcryptCost}, log),
		QR:        codes,
		Orders:    orders.NewEngine(stores.Orders, stores.Users, codes, notifier, log),
		Menu:      menu.NewCatalog(stores.MenuItems, stores.Users, codes, log),
		Extractor: menu.NewChain(cfg.AI.Timeout, log, providers...),
		Push:      pushRegistry,
		Analytics: analytics.NewAggregator(stores.Orders, stores.QRCodes),
		Inventory: inventory.NewService(stores.Inventory, log),
		Printer:   printer.NewService(stores.Orders, stores.Users, printer.NetworkPrinter{Timeout: cfg.Printer.DialTimeout}, log),
		Log:       log,
		Detail:    !cfg.Production(),
	}

	handler := routes.New(c, routes.Options{
		Auth:        c.Accounts,
		Socket:      realtime.NewServer(dir, cfg.CORSOrigins, log),
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
		Detail:      c.Detail,
	})

	return &App{
		Config:    cfg,
		Log:       log,
		Stores:    stores,
		Directory: dir,
		Notifier:  notifier,
		Handler:   handler,
	}
}

// Wait blocks until in-flight notifications have been delivered.
func (a *App) Wait() {
	a.Notifier.Wait()
}
