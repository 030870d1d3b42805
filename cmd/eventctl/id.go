package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"event-rsvp-service/config"
	"event-rsvp-service/internal/domain"
	"event-rsvp-service/internal/ownership"
	"event-rsvp-service/internal/secret"
	"event-rsvp-service/internal/shortid"
)

// idCmd は短縮IDとUUIDの相互変換コマンド群。
func idCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Convert between short IDs and UUIDs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "encode <uuid>",
		Short: "Encode a UUID as a short ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid uuid: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), shortid.Encode(id))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "decode <id>",
		Short: "Decode a short ID (or legacy UUID text) to a UUID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := shortid.Decode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return nil
		},
	})
	return cmd
}

// linkCmd はサーバー鍵からシークレットを導出し、編集URLを表示する。
// サーバーと同じ SECRET_KEY と BASE_URL が必要。
func linkCmd() *cobra.Command {
	var kind, rawID string
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print the edit URL of an event or RSVP (requires SECRET_KEY)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var rk domain.ResourceKind
			switch kind {
			case string(domain.ResourceKindEvent):
				rk = domain.ResourceKindEvent
			case string(domain.ResourceKindRSVP):
				rk = domain.ResourceKindRSVP
			default:
				return fmt.Errorf("--kind must be event or rsvp")
			}

			id, err := shortid.Decode(rawID)
			if err != nil {
				return err
			}

			cfg := config.Load()
			authority, err := secret.NewAuthority([]byte(os.Getenv("SECRET_KEY")))
			if err != nil {
				return fmt.Errorf("SECRET_KEY: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ownership.NewService(authority, cfg.BaseURL).EditURL(rk, id))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "event", "Resource kind: event, rsvp")
	cmd.Flags().StringVar(&rawID, "id", "", "Short ID or UUID (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}
