package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/sakhi/internal/backend"
	"github.com/Veraticus/sakhi/internal/cli"
	"github.com/Veraticus/sakhi/internal/common"
	"github.com/Veraticus/sakhi/internal/transcript"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	var (
		mode    string
		autoYes bool
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the assistant",
		Long: `Send a message to the assistant. Without a message an interactive
session starts; type "exit" to leave.

When the reply lists items (for example "bought 2 kg sugar for 80"),
a table opens to review them before they are saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch mode {
			case backend.ChatModeGeneral, backend.ChatModeBusiness:
			default:
				return fmt.Errorf("invalid mode %q: use %q or %q", mode, backend.ChatModeGeneral, backend.ChatModeBusiness)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cmd.OutOrStdout(), autoYes)
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) > 0 {
				return a.chat(ctx, uuid.NewString(), strings.Join(args, " "), mode)
			}
			return a.repl(ctx, os.Stdin, mode)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", backend.ChatModeBusiness, "chat mode (business, general)")
	cmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "save extracted items without reviewing them")

	return cmd
}

// repl reads messages until exit, EOF or interrupt.
func (a *app) repl(ctx context.Context, in io.Reader, mode string) error {
	reader := cli.NewLineReader(in)
	sessionID := uuid.NewString()

	fmt.Fprintln(a.out, cli.FormatTitle("sakhi"))
	fmt.Fprintln(a.out, cli.FormatInfo(`Type a message, or "exit" to quit.`))

	for {
		fmt.Fprint(a.out, cli.FormatPrompt("you"))
		line, err := reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, cli.ErrInputCancelled) {
				fmt.Fprintln(a.out)
				return nil
			}
			return err
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := a.chat(ctx, sessionID, line, mode); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			common.LogError(err, "Chat message failed", common.Fields{"session_id": sessionID})
			fmt.Fprintln(a.out, cli.FormatError(err.Error()))
		}
	}
}

// chat sends one message, prints the reply and reviews any items in it.
func (a *app) chat(ctx context.Context, sessionID, message, mode string) error {
	a.log.record(ctx, transcript.Entry{
		SessionID: sessionID,
		Role:      transcript.RoleUser,
		Text:      message,
	})

	ext, err := a.client.ProcessText(ctx, message, mode)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	if ext.Message != "" {
		fmt.Fprintln(a.out, cli.AssistantStyle.Render(cli.AssistantIcon+" "+ext.Message))
		a.log.record(ctx, transcript.Entry{
			SessionID: sessionID,
			Role:      transcript.RoleAssistant,
			Text:      ext.Message,
		})
	}

	if !ext.HasItems() {
		return nil
	}
	return a.clarify(ctx, ext)
}
