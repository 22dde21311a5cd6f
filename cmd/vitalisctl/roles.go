package main

import (
	"net/http"

	"github.com/spf13/cobra"
)

func newGrantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <role> <account>",
		Short: "Grant a role to an account (administrator only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient().do(cmd.Context(), http.MethodPost, "/roles/grant",
				map[string]string{"role": args[0], "account": args[1]}, nil)
		},
	}
}

func newRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <role> <account>",
		Short: "Revoke a role from an account (administrator only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient().do(cmd.Context(), http.MethodPost, "/roles/revoke",
				map[string]string{"role": args[0], "account": args[1]}, nil)
		},
	}
}

func newBindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bind <national-id> <account>",
		Short: "Bind an external identity to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient().do(cmd.Context(), http.MethodPost, "/identity/bindings",
				map[string]string{"national_id": args[0], "account": args[1]}, nil)
		},
	}
}
