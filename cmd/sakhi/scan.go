package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/sakhi/internal/cli"
	"github.com/Veraticus/sakhi/internal/common"
	"github.com/Veraticus/sakhi/internal/config"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/transcript"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	var autoYes bool

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Extract items from a receipt photo",
		Long: `Upload a receipt photo (JPEG, PNG, WebP) and review the items
found on it before they are saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := config.ExpandPath(args[0])

			f, err := os.Open(path)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("cannot open %s", path), err)
			}
			defer func() {
				if closeErr := f.Close(); closeErr != nil {
					fmt.Fprintln(os.Stderr, cli.FormatWarning(closeErr.Error()))
				}
			}()

			a, err := newApp(ctx, cmd.OutOrStdout(), autoYes)
			if err != nil {
				return err
			}
			defer a.close()

			sessionID := uuid.NewString()
			a.log.record(ctx, transcript.Entry{
				SessionID: sessionID,
				Role:      transcript.RoleUser,
				Kind:      transcript.KindReceipt,
				Text:      filepath.Base(path),
			})

			ext, err := a.client.ProcessImage(ctx, filepath.Base(path), f)
			if err != nil {
				return fmt.Errorf("failed to process receipt: %w", err)
			}

			if ext.Merchant != "" {
				fmt.Fprintln(a.out, receiptSummary(ext))
			}
			if ext.Message != "" {
				fmt.Fprintln(a.out, cli.AssistantStyle.Render(cli.AssistantIcon+" "+ext.Message))
				a.log.record(ctx, transcript.Entry{
					SessionID: sessionID,
					Role:      transcript.RoleAssistant,
					Kind:      transcript.KindReceipt,
					Text:      ext.Message,
				})
			}

			if !ext.HasItems() {
				fmt.Fprintln(a.out, cli.FormatWarning("No items found on the receipt."))
				return nil
			}
			return a.clarify(ctx, ext)
		},
	}

	cmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "save extracted items without reviewing them")

	return cmd
}

// receiptSummary boxes the merchant and receipt total.
func receiptSummary(ext model.Extraction) string {
	body := fmt.Sprintf("Total ₹%s · %d items", ext.ReceiptTotal.StringFixed(2), len(ext.Items))
	return cli.RenderBox(cli.ReceiptIcon+" "+ext.Merchant, body)
}
