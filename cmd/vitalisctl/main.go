// Package main provides vitalisctl, the operator CLI for the vitalis ledger.
// It speaks the same HTTP API the service exposes; nothing here touches the
// stores directly.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0-dev"
	serverURL  string
	authToken  string
	accountHdr string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "vitalisctl",
		Short:   "Operate a vitalis certification ledger over its HTTP API",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the vitalis server")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Bearer token identifying the caller")
	rootCmd.PersistentFlags().StringVar(&accountHdr, "as", "", "Caller account id for trusted-header deployments")

	rootCmd.AddCommand(
		newGrantCmd(),
		newRevokeCmd(),
		newBindCmd(),
		newCreateCmd(),
		newVerifyCmd(),
		newAttachCmd(),
		newGetCmd(),
		newSearchCmd(),
		newCountCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
