package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// eventPayload はイベント作成・更新のリクエストボディ。
type eventPayload struct {
	Title       string    `json:"title"`
	Tagline     string    `json:"tagline"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
}

type eventFlags struct {
	title, tagline, description, location string
	start, end                            string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Event title (required)")
	cmd.Flags().StringVar(&f.tagline, "tagline", "", "Event tagline (required)")
	cmd.Flags().StringVar(&f.description, "description", "", "Event description")
	cmd.Flags().StringVar(&f.location, "location", "", "Event location (required)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time in RFC3339 (required)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time in RFC3339 (required)")
	for _, name := range []string{"title", "tagline", "location", "start", "end"} {
		cmd.MarkFlagRequired(name)
	}
}

func (f *eventFlags) payload() (*eventPayload, error) {
	start, err := time.Parse(time.RFC3339, f.start)
	if err != nil {
		return nil, fmt.Errorf("--start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, f.end)
	if err != nil {
		return nil, fmt.Errorf("--end: %w", err)
	}
	return &eventPayload{
		Title:       f.title,
		Tagline:     f.tagline,
		Description: f.description,
		StartTime:   start,
		EndTime:     end,
		Location:    f.location,
	}, nil
}

// eventCmd はイベント操作のコマンド群。
func eventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage events",
	}
	cmd.AddCommand(eventCreateCmd())
	cmd.AddCommand(eventGetCmd())
	cmd.AddCommand(eventUpdateCmd())
	cmd.AddCommand(eventDeleteCmd())
	return cmd
}

// eventCreateCmd はイベントの作成コマンド。
func eventCreateCmd() *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new event",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.payload()
			if err != nil {
				return err
			}

			body, err := callAPI(cmd.Context(), http.MethodPost, "/v1/events", p, http.StatusCreated)
			if err != nil {
				return err
			}
			if printJSON(cmd, body) {
				return nil
			}

			var result struct {
				ID      string `json:"id"`
				Secret  string `json:"secret"`
				EditURL string `json:"edit_url"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created event %s\nSecret: %s\nEdit URL: %s\n", result.ID, result.Secret, result.EditURL)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// eventGetCmd はイベントの取得コマンド。
func eventGetCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(cmd.Context(), http.MethodGet, "/v1/events/"+id, nil, http.StatusOK)
			if err != nil {
				return err
			}
			if printJSON(cmd, body) {
				return nil
			}

			var result struct {
				ID        string `json:"id"`
				Title     string `json:"title"`
				Tagline   string `json:"tagline"`
				StartTime string `json:"start_time"`
				EndTime   string `json:"end_time"`
				Location  string `json:"location"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s\n  %s - %s\n  %s\n", result.Title, result.Tagline, result.StartTime, result.EndTime, result.Location)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Event ID (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}

// eventUpdateCmd はイベントの更新コマンド。
func eventUpdateCmd() *cobra.Command {
	var f eventFlags
	var id, secret string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.payload()
			if err != nil {
				return err
			}

			body, err := callAPI(cmd.Context(), http.MethodPut, withSecret("/v1/events/"+id, secret), p, http.StatusOK)
			if err != nil {
				return err
			}
			if printJSON(cmd, body) {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated event %s\n", id)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "Event ID (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "Event secret (required)")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("secret")
	return cmd
}

// eventDeleteCmd はイベントの削除コマンド。
func eventDeleteCmd() *cobra.Command {
	var id, secret string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an event and its RSVPs",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(cmd.Context(), http.MethodDelete, withSecret("/v1/events/"+id, secret), nil, http.StatusNoContent)
			if err != nil {
				return err
			}
			if printJSON(cmd, body) {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Event ID (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "Event secret (required)")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("secret")
	return cmd
}
