package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// rsvpCmd はRSVP操作のコマンド群。
func rsvpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rsvp",
		Short: "Manage RSVPs",
	}
	cmd.AddCommand(rsvpCreateCmd())
	cmd.AddCommand(rsvpListCmd())
	cmd.AddCommand(rsvpDeleteCmd())
	return cmd
}

// rsvpCreateCmd はRSVPの作成コマンド。
func rsvpCreateCmd() *cobra.Command {
	var eventID, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "RSVP to an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"name": name}
			body, err := callAPI(cmd.Context(), http.MethodPost, "/v1/events/"+eventID+"/rsvps", payload, http.StatusCreated)
			if err != nil {
				return err
			}
			if printJSON(cmd, body) {
				return nil
			}

			var result struct {
				ID      string `json:"id"`
				EditURL string `json:"edit_url"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created RSVP %s\nEdit URL: %s\n", result.ID, result.EditURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "Event ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Attendee name (required)")
	cmd.MarkFlagRequired("event")
	cmd.MarkFlagRequired("name")
	return cmd
}

// rsvpListCmd はRSVP一覧の取得コマンド。
func rsvpListCmd() *cobra.Command {
	var eventID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List RSVPs of an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(cmd.Context(), http.MethodGet, "/v1/events/"+eventID+"/rsvps", nil, http.StatusOK)
			if err != nil {
				return err
			}
			if printJSON(cmd, body) {
				return nil
			}

			var result struct {
				RSVPs []struct {
					ID        string `json:"id"`
					Name      string `json:"name"`
					CreatedAt string `json:"created_at"`
				} `json:"rsvps"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCREATED_AT")
			for _, r := range result.RSVPs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Name, r.CreatedAt)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "Event ID (required)")
	cmd.MarkFlagRequired("event")
	return cmd
}

// rsvpDeleteCmd はRSVPの削除コマンド。
func rsvpDeleteCmd() *cobra.Command {
	var id, secret string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an RSVP",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(cmd.Context(), http.MethodDelete, withSecret("/v1/rsvps/"+id, secret), nil, http.StatusNoContent)
			if err != nil {
				return err
			}
			if printJSON(cmd, body) {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted RSVP %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "RSVP ID (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "RSVP secret (required)")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("secret")
	return cmd
}
