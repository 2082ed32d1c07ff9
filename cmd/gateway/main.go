package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/storefront-session-gateway/internal/app"
	"github.com/sandeepkv93/storefront-session-gateway/internal/observability"
	"github.com/sandeepkv93/storefront-session-gateway/internal/tools/common"
	"github.com/sandeepkv93/storefront-session-gateway/internal/tools/sessioncheck"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "gateway",
		Short: "Session gateway for the storefront application",
	}
	root.AddCommand(newServeCommand(), newVersionCommand(), sessioncheck.NewRootCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := common.LoadEnvFile(envFile); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Initialize(ctx)
			if err != nil {
				observability.NewBootstrapLogger().Error("initialize gateway", "error", err)
				return err
			}
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional env file loaded before configuration")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gateway version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}
