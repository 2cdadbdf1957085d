package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/diybuddy/projectbuddy/app/bootstrap"
	"github.com/diybuddy/projectbuddy/config"
	"github.com/diybuddy/projectbuddy/pkg/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Tests build a fresh one per run.
func newRootCmd() *cobra.Command {
	var (
		driver  string
		mongoLg *logger.MongoHandler
	)

	root := &cobra.Command{
		Use:           "projectbuddy",
		Short:         "DIY project buddy: project catalog and basket",
		Long:          "Serve the project buddy API, or inspect and change the basket from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			if driver != "" {
				config.Set("BASKET_DRIVER", driver)
			}
			if uri := config.LogMongoURI(); uri != "" {
				h, err := logger.NewMongoHandler(cmd.Context(), uri, config.MongoDatabase(), config.LogMongoCollection(), slog.LevelInfo)
				if err != nil {
					logger.Warn("mongo log sink disabled", "error", err)
					return nil
				}
				mongoLg = h
				logger.Attach(h)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if mongoLg == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return mongoLg.Close(ctx)
		},
	}
	root.PersistentFlags().StringVar(&driver, "driver", "", "basket slot driver (memory, local, s3, redis, mongo, database)")

	// Server
	root.AddCommand(serveCmd())
	root.AddCommand(routeListCmd())

	// Catalog
	root.AddCommand(catalogListCmd())

	// Basket
	root.AddCommand(basketShowCmd())
	root.AddCommand(basketCreateCmd())
	root.AddCommand(basketAddCmd())
	root.AddCommand(basketSetCmd())
	root.AddCommand(basketRemoveCmd())
	root.AddCommand(basketCheckoutCmd())

	return root
}

// boot wires the services for one command and closes them when it ends.
func boot(cmd *cobra.Command, opts bootstrap.Options) (*bootstrap.Services, func(), error) {
	s, err := bootstrap.Boot(cmd.Context(), opts)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close(context.Background()) }, nil
}
