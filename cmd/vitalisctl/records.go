package main

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var (
		eventStart string
		eventEnd   string
		location   string
		proof      string
		owner      string
		nationalID string
		auxRef     string
	)

	cmd := &cobra.Command{
		Use:   "create <subject-name>",
		Short: "Create a certificate record",
		Long: "Creates a record in the direct flow (--owner) or the identity-bound " +
			"flow (--national-id), which resolves the owner through the binding registry.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(time.RFC3339, eventStart)
			if err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
			end, err := time.Parse(time.RFC3339, eventEnd)
			if err != nil {
				return fmt.Errorf("parse --end: %w", err)
			}

			body := map[string]any{
				"subject_name":     args[0],
				"event_start":      start,
				"event_end":        end,
				"location":         location,
				"proof_commitment": proof,
			}
			path := "/records"
			switch {
			case nationalID != "":
				path = "/records/identity"
				body["national_id"] = nationalID
				body["auxiliary_ref"] = auxRef
			case owner != "":
				body["owner"] = owner
			default:
				return fmt.Errorf("either --owner or --national-id is required")
			}

			var out map[string]string
			if err := newClient().do(cmd.Context(), http.MethodPost, path, body, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}

	cmd.Flags().StringVar(&eventStart, "start", "", "Event start timestamp (RFC3339)")
	cmd.Flags().StringVar(&eventEnd, "end", "", "Event end timestamp (RFC3339)")
	cmd.Flags().StringVar(&location, "location", "", "Event location")
	cmd.Flags().StringVar(&proof, "proof", "", "Proof commitment for the supporting evidence")
	cmd.Flags().StringVar(&owner, "owner", "", "Owning account (direct flow)")
	cmd.Flags().StringVar(&nationalID, "national-id", "", "Bound external identity (identity flow)")
	cmd.Flags().StringVar(&auxRef, "aux-ref", "", "Auxiliary reference set at creation (identity flow)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("proof")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <record-id>",
		Short: "Mark a record verified (dao-verifier or verified-issuer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient().do(cmd.Context(), http.MethodPost,
				"/records/"+args[0]+"/verify", struct{}{}, nil)
		},
	}
}

func newAttachCmd() *cobra.Command {
	var (
		description string
		references  []string
	)

	cmd := &cobra.Command{
		Use:   "attach <record-id> <title>",
		Short: "Attach (or replace) the memorial content of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient().do(cmd.Context(), http.MethodPut,
				"/records/"+args[0]+"/memorial", map[string]any{
					"title":       args[1],
					"description": description,
					"references":  references,
				}, nil)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Memorial description")
	cmd.Flags().StringArrayVar(&references, "ref", nil, "External content reference (repeatable; first becomes the auxiliary reference)")

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <record-id>",
		Short: "Fetch a record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			if err := newClient().do(cmd.Context(), http.MethodGet, "/records/"+args[0], nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Find record ids by subject name (ASCII case-insensitive, exact match)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			path := "/records/search?name=" + url.QueryEscape(args[0])
			if err := newClient().do(cmd.Context(), http.MethodGet, path, nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the total number of records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := newClient().do(cmd.Context(), http.MethodGet, "/records/count", nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}
