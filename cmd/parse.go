package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundscope/disclosure-cli/internal/model"
	"github.com/fundscope/disclosure-cli/internal/parser"
)

var (
	parseFormatHint string
	parseDocID      string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a single fund disclosure document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("parse"); err != nil {
			return err
		}

		facade, err := initFacade()
		if err != nil {
			return err
		}

		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return eris.Wrapf(err, "read %s", path)
		}

		docID := parseDocID
		if docID == "" {
			docID = uuid.NewString()
		}

		result := facade.Parse(cmd.Context(), parser.Request{
			Content:          string(content),
			Path:             path,
			FormatHint:       model.DocumentFormat(parseFormatHint),
			SourceDocumentID: docID,
		})

		zap.L().Info("parse finished",
			zap.String("file", path),
			zap.Bool("success", result.Success),
			zap.String("strategy", result.StrategyUsed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseFormatHint, "format", "", "format hint (xbrl, inline_xbrl, html); overrides detection")
	parseCmd.Flags().StringVar(&parseDocID, "doc-id", "", "source document id (default: random uuid)")
	rootCmd.AddCommand(parseCmd)
}
