package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/sakhi/internal/cli"
	"github.com/Veraticus/sakhi/internal/common"
	"github.com/Veraticus/sakhi/internal/transcript"
	"github.com/spf13/cobra"
)

const historyTimeFormat = "02 Jan 15:04"

func historyCmd() *cobra.Command {
	var (
		limit    int
		remote   bool
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversation",
		Long: `Show the local transcript of recent messages and review outcomes.
With --remote the history kept by the backend is shown instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if remote {
				a, err := newApp(ctx, out, false)
				if err != nil {
					return err
				}
				defer a.close()
				return printRemoteHistory(ctx, a, limit)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.TranscriptEnabled {
				return common.NewUserError("the local transcript is disabled (transcript.enabled)", common.ErrMissingConfig)
			}

			store, err := openTranscript(ctx, cfg)
			if err != nil {
				return err
			}
			log := newChatLog(store, "")
			defer log.close()

			if clearAll {
				if err := store.Clear(ctx); err != nil {
					return fmt.Errorf("failed to clear transcript: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess("Transcript cleared"))
				return nil
			}

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}
			printEntries(out, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "number of entries to show")
	cmd.Flags().BoolVar(&remote, "remote", false, "show the backend chat history")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete the local transcript")
	cmd.MarkFlagsMutuallyExclusive("remote", "clear")

	return cmd
}

func printEntries(w io.Writer, entries []transcript.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No conversation yet"))
		return
	}

	for _, e := range entries {
		stamp := cli.SubtleStyle.Render(e.CreatedAt.Local().Format(historyTimeFormat))
		switch e.Role {
		case transcript.RoleUser:
			prefix := "you"
			if e.Kind == transcript.KindReceipt {
				prefix = cli.ReceiptIcon
			}
			fmt.Fprintf(w, "%s %s %s\n", stamp, cli.UserStyle.Render(prefix), e.Text)
		case transcript.RoleAssistant:
			fmt.Fprintf(w, "%s %s %s\n", stamp, cli.AssistantStyle.Render(cli.AssistantIcon), e.Text)
		default:
			fmt.Fprintf(w, "%s %s\n", stamp, cli.SubtleStyle.Render(e.Text))
		}
	}
}

func printRemoteHistory(ctx context.Context, a *app, limit int) error {
	messages, err := a.client.ChatHistory(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	entries := make([]transcript.Entry, 0, len(messages))
	for _, m := range messages {
		role := transcript.RoleAssistant
		if m.IsUser {
			role = transcript.RoleUser
		}
		created := m.Timestamp
		if created.IsZero() {
			created = time.Now()
		}
		entries = append(entries, transcript.Entry{
			CreatedAt: created,
			Role:      role,
			Kind:      transcript.KindMessage,
			Text:      m.Text,
		})
	}
	printEntries(a.out, entries)
	return nil
}
