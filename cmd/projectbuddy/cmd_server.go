package main

import (
	"github.com/spf13/cobra"

	"github.com/diybuddy/projectbuddy/app/bootstrap"
	"github.com/diybuddy/projectbuddy/pkg/slot"
)

// projectbuddy serve
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, notice feed and gRPC health server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := boot(cmd, bootstrap.Options{Feed: true})
			if err != nil {
				return err
			}
			defer done()

			go s.Hub.Run(cmd.Context())
			return s.Application().Serve(cmd.Context())
		},
	}
}

// projectbuddy route:list
func routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "List all registered named routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Routes don't depend on the backend; skip dialing it.
			s, done, err := boot(cmd, bootstrap.Options{Slot: slot.NewMemory(), Feed: true})
			if err != nil {
				return err
			}
			defer done()

			return s.Application().PrintRoutes(cmd.OutOrStdout())
		},
	}
}
