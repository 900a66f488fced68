package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/ppiankov/quotelens/internal/pipeline"
	"github.com/spf13/cobra"
)

var fetchDir string

// fetchCmd downloads corpus and knowledge-base files
var fetchCmd = &cobra.Command{
	Use:   "fetch [url...]",
	Short: "Download corpus and knowledge-base files",
	Long: `Fetch downloads dataset files into the download directory, retrying
transient failures. Without arguments the URLs in download.sources are used.

Example:
  quotelens fetch https://zenodo.org/record/4277311/files/quotes-2019.json.bz2
  quotelens fetch --dir data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage("fetch", func(ctx context.Context, p *pipeline.Pipeline, cfg *model.Config) (string, error) {
			urls := args
			if len(urls) == 0 {
				urls = cfg.Download.Sources
			}
			if len(urls) == 0 {
				return "", fmt.Errorf("no URLs given and download.sources is empty")
			}
			if fetchDir != "" {
				cfg.Download.Dir = fetchDir
			}

			results, err := p.Fetch(ctx, urls)
			var total int64
			for _, r := range results {
				total += r.Bytes
				fmt.Fprintf(os.Stderr, "✓ %s (%s)\n", r.Path, humanize.Bytes(uint64(r.Bytes)))
			}
			return fmt.Sprintf("%d files, %s", len(results), humanize.Bytes(uint64(total))), err
		})
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "download directory (overrides download.dir)")
}
