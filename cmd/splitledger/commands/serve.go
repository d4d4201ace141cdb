package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/splitledger/splitledger/internal/api"
	"github.com/splitledger/splitledger/internal/config"
	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
	"github.com/splitledger/splitledger/pkg/logging"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the splitledger HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Server.LogLevel)

			store, err := sqlite.New(cfg.Database.Path)
			if err != nil {
				slog.Error("Failed to initialize storage", "error", err)
				return err
			}
			defer store.Close()
			slog.Info("Storage initialized", "database", cfg.Database.Path)

			l := ledger.New(store)
			if err := l.Init(context.Background()); err != nil {
				slog.Error("Failed to load ledger", "error", err)
				return err
			}

			handler := api.NewHandler(l).Routes()

			// HTTP/2 cleartext so browser and CLI clients can multiplex
			// without TLS.
			h2cHandler := h2c.NewHandler(handler, &http2.Server{})

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			slog.Info("Server starting", "address", addr)
			if err := http.ListenAndServe(addr, h2cHandler); err != nil {
				slog.Error("Server failed", "error", err)
				return err
			}
			return nil
		},
	}
}
