package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/02priyeshraj/QR_Menu_Backend/app"
	"github.com/02priyeshraj/QR_Menu_Backend/config"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/push"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
	"github.com/02priyeshraj/QR_Menu_Backend/store/memstore"
	"github.com/02priyeshraj/QR_Menu_Backend/store/mongostore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "qrmenu",
		Short:         "QR menu ordering backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), indexesCmd(), vapidKeysCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addr string
	var memory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(!memory)
			if err != nil {
				return err
			}
			log := logger.New("qrmenu", os.Stdout, cfg.Debug)
			if addr == "" {
				addr = ":" + cfg.Port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var stores store.Stores
			if memory {
				log.Warn("", "memory_store", "using in-memory store; data is lost on restart")
				stores = memstore.New()
			} else {
				client, err := config.Connect(ctx, cfg.MongoURI)
				if err != nil {
					return err
				}
				defer client.Disconnect(context.Background())
				db := client.Database(cfg.DBName)
				if err := config.EnsureIndexes(ctx, db); err != nil {
					return err
				}
				stores = mongostore.New(db)
				log.Info("", "mongo_connected", "connected to MongoDB", "db", cfg.DBName)
			}

			a := app.New(cfg, stores, log)
			srv := &http.Server{Addr: addr, Handler: a.Handler, ReadHeaderTimeout: 10 * time.Second}

			errCh := make(chan error, 1)
			go func() {
				log.Info("", "server_start", "server running", "addr", addr, "env", cfg.Env)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
			}

			log.Info("", "server_stop", "shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("", "server_stop", "graceful shutdown failed", err)
			}
			a.Wait()
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT)")
	cmd.Flags().BoolVar(&memory, "memory", false, "keep data in process memory instead of MongoDB")
	return cmd
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(true)
			if err != nil {
				return err
			}
			client, err := config.Connect(cmd.Context(), cfg.MongoURI)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())
			if err := config.EnsureIndexes(cmd.Context(), client.Database(cfg.DBName)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes created")
			return nil
		},
	}
}

func vapidKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid-keys",
		Short: "Generate a VAPID key pair for web push",
		RunE: func(cmd *cobra.Command, args []string) error {
			private, public, err := push.GenerateKeys()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", public, private)
			return nil
		},
	}
}
