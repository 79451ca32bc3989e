package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/sakhi/internal/common"
	"github.com/Veraticus/sakhi/internal/config"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// itemFile is the on-disk shape of a list of items to review. JSON files
// parse too.
type itemFile struct {
	Merchant string      `yaml:"merchant"`
	Message  string      `yaml:"message"`
	Items    []itemEntry `yaml:"items"`
}

type itemEntry struct {
	Name        string          `yaml:"name"`
	Unit        string          `yaml:"unit"`
	Description string          `yaml:"description"`
	Category    string          `yaml:"category"`
	Quantity    decimal.Decimal `yaml:"quantity"`
	UnitPrice   decimal.Decimal `yaml:"unit_price"`
	TotalPrice  decimal.Decimal `yaml:"total_price"`
}

func reviewCmd() *cobra.Command {
	var autoYes bool

	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Review items from a YAML or JSON file and save them",
		Long: `Open the clarification table for items listed in a file.

Example file:

  merchant: Sharma Kirana
  items:
    - name: Sugar
      quantity: 2
      unit: kg
      total_price: 80
      category: expense`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ext, err := loadItemFile(config.ExpandPath(args[0]))
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cmd.OutOrStdout(), autoYes)
			if err != nil {
				return err
			}
			defer a.close()

			return a.clarify(ctx, ext)
		},
	}

	cmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "save the items without reviewing them")

	return cmd
}

func loadItemFile(path string) (model.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Extraction{}, common.NewUserError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer func() { _ = f.Close() }()

	return parseItems(f)
}

// parseItems decodes an item file. Missing unit prices or totals are
// derived from each other the way the table would derive them. Rows are not
// validated here; blank rows reach the table and are dropped at commit.
func parseItems(r io.Reader) (model.Extraction, error) {
	var file itemFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return model.Extraction{}, common.NewUserError("item file is not valid YAML or JSON", err)
	}

	ext := model.Extraction{
		Merchant:           file.Merchant,
		Message:            file.Message,
		NeedsClarification: true,
		Items:              make([]model.ExtractedItem, 0, len(file.Items)),
	}
	for _, entry := range file.Items {
		item := model.ExtractedItem{
			Name:              strings.TrimSpace(entry.Name),
			Unit:              entry.Unit,
			Description:       entry.Description,
			SuggestedCategory: model.ParseLedger(entry.Category),
			Quantity:          entry.Quantity,
			UnitPrice:         entry.UnitPrice,
			TotalPrice:        entry.TotalPrice,
		}
		if item.Quantity.IsZero() {
			item.Quantity = decimal.NewFromInt(1)
		}
		switch {
		case item.TotalPrice.IsZero() && !item.UnitPrice.IsZero():
			item.TotalPrice = item.UnitPrice.Mul(item.Quantity)
		case item.UnitPrice.IsZero() && !item.TotalPrice.IsZero():
			item.UnitPrice = item.TotalPrice.Div(item.Quantity).Round(2)
		}
		ext.Items = append(ext.Items, item)
	}
	return ext, nil
}
