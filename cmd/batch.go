package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fundscope/disclosure-cli/internal/model"
	"github.com/fundscope/disclosure-cli/internal/parser"
)

var (
	batchLimit  int
	batchOutput string
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Parse every disclosure document in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		facade, err := initFacade()
		if err != nil {
			return err
		}

		files, err := listDocuments(args[0])
		if err != nil {
			return err
		}

		summary := processDocuments(ctx, facade, files, batchLimit, cfg.Batch.MaxConcurrentDocuments, batchOutput)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of documents to process (0 = all)")
	batchCmd.Flags().StringVar(&batchOutput, "out", "", "directory for per-document result JSON files")
	rootCmd.AddCommand(batchCmd)
}

// documentExtensions are the file types batch picks up from a directory.
var documentExtensions = map[string]bool{
	".xbrl": true,
	".xml":  true,
	".html": true,
	".htm":  true,
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read dir %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if documentExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// BatchSummary aggregates the outcome of a batch run.
type BatchSummary struct {
	Total            int            `json:"total"`
	Succeeded        int            `json:"succeeded"`
	Failed           int            `json:"failed"`
	ByStrategy       map[string]int `json:"by_strategy,omitempty"`
	ByFormat         map[string]int `json:"by_format,omitempty"`
	MeanQualityScore float64        `json:"mean_quality_score"`
	RepairedCount    int            `json:"repaired_count"`
	FailedFiles      []string       `json:"failed_files,omitempty"`
}

// parseFunc is the callback signature for parsing a single document.
type parseFunc func(ctx context.Context, req parser.Request) model.ParseResult

// processDocuments applies limit, then parses files concurrently. Individual
// failures never abort the batch; they are counted in the summary.
func processDocuments(ctx context.Context, facade *parser.Facade, files []string, limit, concurrency int, outDir string) BatchSummary {
	return runBatch(ctx, files, limit, concurrency, outDir, facade.Parse)
}

func runBatch(ctx context.Context, files []string, limit, concurrency int, outDir string, parse parseFunc) BatchSummary {
	summary := BatchSummary{
		ByStrategy: map[string]int{},
		ByFormat:   map[string]int{},
	}
	if len(files) == 0 {
		zap.L().Info("no documents found")
		return summary
	}

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	summary.Total = len(files)

	zap.L().Info("processing batch",
		zap.Int("documents", len(files)),
		zap.Int("concurrency", concurrency),
	)

	var mu sync.Mutex
	var scoreSum float64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range files {
		path := path
		g.Go(func() error {
			log := zap.L().With(zap.String("file", path))

			content, err := os.ReadFile(path)
			if err != nil {
				log.Error("read failed", zap.Error(err))
				mu.Lock()
				summary.Failed++
				summary.FailedFiles = append(summary.FailedFiles, path)
				mu.Unlock()
				return nil // don't abort batch on individual failure
			}

			result := parse(gctx, parser.Request{
				Content:          string(content),
				Path:             path,
				SourceDocumentID: uuid.NewString(),
			})

			if outDir != "" {
				if err := writeResult(outDir, path, result); err != nil {
					log.Warn("failed to write result file", zap.Error(err))
				}
			}

			mu.Lock()
			defer mu.Unlock()
			summary.ByFormat[string(result.Metadata.DetectedFormat)]++
			if !result.Success {
				summary.Failed++
				summary.FailedFiles = append(summary.FailedFiles, path)
				log.Warn("parse failed", zap.Strings("errors", result.Errors))
				return nil
			}

			summary.Succeeded++
			summary.ByStrategy[result.StrategyUsed]++
			scoreSum += result.Report.DataQualityScore
			if result.Metadata.RepairApplied {
				summary.RepairedCount++
			}
			log.Info("parse complete",
				zap.String("strategy", result.StrategyUsed),
				zap.Float64("quality_score", result.Report.DataQualityScore),
			)
			return nil
		})
	}
	_ = g.Wait()

	if summary.Succeeded > 0 {
		summary.MeanQualityScore = scoreSum / float64(summary.Succeeded)
	}
	sort.Strings(summary.FailedFiles)

	zap.L().Info("batch complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Float64("mean_quality_score", summary.MeanQualityScore),
	)
	return summary
}

func writeResult(outDir, srcPath string, result model.ParseResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal result")
	}
	name := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath)) + ".json"
	return os.WriteFile(filepath.Join(outDir, name), data, 0o644)
}
