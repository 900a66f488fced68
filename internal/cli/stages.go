package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/ppiankov/quotelens/internal/pipeline"
	"github.com/ppiankov/quotelens/internal/store"
	"github.com/spf13/cobra"
)

var (
	classifierProvider string
	classifierModel    string
	noCache            bool
	outputDir          string
	formats            []string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Filter the quotation corpus by keyword into the artifact store",
	Long: `Extract streams each year's corpus file, keeps the quotations matching the
configured keywords and stores them, replacing any earlier extraction.

Example:
  quotelens extract --years 2019,2020`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage("extract", func(ctx context.Context, p *pipeline.Pipeline, cfg *model.Config) (string, error) {
			stats, err := p.Extract(ctx, cfg.Corpus.Years)
			var matched, lines int64
			for _, year := range cfg.Corpus.Years {
				s, ok := stats[year]
				if !ok {
					continue
				}
				matched += s.Matched
				lines += s.Lines
				fmt.Fprintf(os.Stderr, "✓ %d: %s of %s lines matched (%d malformed)\n",
					year, humanize.Comma(s.Matched), humanize.Comma(s.Lines), s.Malformed)
			}
			return fmt.Sprintf("matched %d of %d lines", matched, lines), err
		})
	},
}

var speakersCmd = &cobra.Command{
	Use:   "speakers",
	Short: "Resolve speaker attributes from the knowledge base",
	Long: `Speakers merges speaker aliases, joins each speaker's canonical entity
with the knowledge base and stores one summary per speaker and year.

Attribute IDs without a label are reported and left null unless
resolve.strict_labels is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage("speakers", func(ctx context.Context, p *pipeline.Pipeline, cfg *model.Config) (string, error) {
			result, err := p.Speakers(ctx, cfg.Corpus.Years)
			if err != nil {
				return "", err
			}

			total := 0
			for _, year := range cfg.Corpus.Years {
				summaries := result.ByYear[year]
				total += len(summaries)
				resolved := 0
				for _, s := range summaries {
					if s.Resolved() {
						resolved++
					}
				}
				fmt.Fprintf(os.Stderr, "✓ %d: %d speakers, %d resolved\n", year, len(summaries), resolved)
			}

			if len(result.Misses) > 0 {
				fmt.Fprintf(os.Stderr, "⚠️  %d attribute IDs have no label\n", len(result.Misses))
				if verbose {
					for _, m := range result.Misses {
						fmt.Fprintf(os.Stderr, "   %s %s (%d)\n", m.Attribute, m.ID, m.Count)
					}
				}
			}
			return fmt.Sprintf("%d speakers, %d unlabelled ids", total, len(result.Misses)), nil
		})
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Classify sentiment and measure complexity of every quotation",
	Long: `Score classifies each quotation with the configured sentiment classifier,
computes its readability grade and attaches its speaker's attributes.

Classifiers: lexicon (offline, default), openai, anthropic, ollama.

Example:
  quotelens score --classifier openai --model gpt-4o-mini
  quotelens score --classifier ollama --model llama3.2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage("score", func(ctx context.Context, p *pipeline.Pipeline, cfg *model.Config) (string, error) {
			scorer, err := p.NewScorer()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(os.Stderr, "⚙️  Classifier: %s, %d workers\n", cfg.Classifier.Provider, cfg.Classifier.Workers)

			counts, err := p.Score(ctx, cfg.Corpus.Years, scorer)
			total := 0
			for _, year := range cfg.Corpus.Years {
				if n, ok := counts[year]; ok {
					total += n
					fmt.Fprintf(os.Stderr, "✓ %d: %s quotations scored\n", year, humanize.Comma(int64(n)))
				}
			}
			return fmt.Sprintf("%d quotations scored", total), err
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render tables and charts from stored artifacts",
	Long: `Report reads whatever stages have run for the selected years and writes
CSV and JSON tables plus an HTML page with bar charts.

Example:
  quotelens report --output-dir plots --format html`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage("report", runReport)
	},
}

var runAllCmd = &cobra.Command{
	Use:   "run",
	Short: "Run extract, speakers, score and report in sequence",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage("run", func(ctx context.Context, p *pipeline.Pipeline, cfg *model.Config) (string, error) {
			if _, err := p.Extract(ctx, cfg.Corpus.Years); err != nil {
				return "", fmt.Errorf("extract: %w", err)
			}
			fmt.Fprintf(os.Stderr, "✓ Extracted\n")

			if _, err := p.Speakers(ctx, cfg.Corpus.Years); err != nil {
				return "", fmt.Errorf("speakers: %w", err)
			}
			fmt.Fprintf(os.Stderr, "✓ Resolved speakers\n")

			scorer, err := p.NewScorer()
			if err != nil {
				return "", err
			}
			if _, err := p.Score(ctx, cfg.Corpus.Years, scorer); err != nil {
				return "", fmt.Errorf("score: %w", err)
			}
			fmt.Fprintf(os.Stderr, "✓ Scored\n")

			return runReport(ctx, p, cfg)
		})
	},
}

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent stage runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.Runs(ctx, runsLimit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			finished := "running"
			if r.FinishedAt != nil {
				finished = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
			}
			fmt.Printf("%s  %-9s %-9s %-10s %s  %s\n",
				r.ID, r.Command, r.Status, finished, humanize.Time(r.StartedAt), r.Detail)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd, speakersCmd, scoreCmd, reportCmd, runAllCmd, runsCmd)

	for _, cmd := range []*cobra.Command{scoreCmd, runAllCmd} {
		cmd.Flags().StringVar(&classifierProvider, "classifier", "", "sentiment classifier (lexicon, openai, anthropic, ollama)")
		cmd.Flags().StringVar(&classifierModel, "model", "", "classifier model name")
		cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the classification cache")
	}
	for _, cmd := range []*cobra.Command{reportCmd, runAllCmd} {
		cmd.Flags().StringVar(&outputDir, "output-dir", "", "report directory (overrides output.dir)")
		cmd.Flags().StringSliceVar(&formats, "format", nil, "report formats: csv, json, html (default: output.formats)")
	}
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to list")
}

// stageFunc runs one stage and returns a one-line summary for the run log
type stageFunc func(ctx context.Context, p *pipeline.Pipeline, cfg *model.Config) (string, error)

// runStage opens the store, records the run and executes fn
func runStage(name string, fn stageFunc) (err error) {
	ctx, cancel := commandContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyStageFlags(cfg)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  quotelens %s\n", name)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Years:   %s\n", joinInts(cfg.Corpus.Years))
	fmt.Fprintf(os.Stderr, "  Store:   %s\n", cfg.Store.Path)
	fmt.Fprintf(os.Stderr, "\n")

	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close store: %w", closeErr)
		}
	}()

	runID, err := st.BeginRun(ctx, name)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg, st, newLogger(name))
	detail, runErr := fn(ctx, p, cfg)

	// Record the outcome even when ctx has expired
	if finishErr := st.FinishRun(context.Background(), runID, runErr, detail); finishErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", finishErr)
	}
	if runErr != nil {
		if errors.Is(runErr, store.ErrNotFound) {
			return fmt.Errorf("%s failed: %w (run the earlier stages first)", name, runErr)
		}
		return fmt.Errorf("%s failed: %w", name, runErr)
	}

	fmt.Fprintf(os.Stderr, "\n✓ %s complete (run %s): %s\n", name, runID, detail)
	return nil
}

func runReport(ctx context.Context, p *pipeline.Pipeline, cfg *model.Config) (string, error) {
	written, err := p.Report(ctx, cfg.Corpus.Years)
	for _, path := range written {
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
		}
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d files in %s", len(written), cfg.Output.Dir), nil
}

// applyStageFlags overrides config with the stage-specific flags
func applyStageFlags(cfg *model.Config) {
	if classifierProvider != "" {
		cfg.Classifier.Provider = classifierProvider
		applyProviderEnv(cfg)
	}
	if classifierModel != "" {
		cfg.Classifier.Model = classifierModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if len(formats) > 0 {
		cfg.Output.Formats = formats
	}
}

func commandContext() (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}

func joinInts(values []int) string {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
