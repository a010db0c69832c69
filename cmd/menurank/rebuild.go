package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	recommenduc "github.com/kailas-cloud/menurank/internal/usecase/recommend"
)

var (
	rebuildCollection string
	rebuildQuiet      bool
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-index the menu catalog",
	Long: `Load the configured catalog files, build one document per menu item and
replace the contents of the collection. Queries keep seeing the previous
contents until the new build is complete.

Examples:
  menurank rebuild
  menurank rebuild --collection menu_items_staging`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
	rebuildCmd.Flags().StringVar(&rebuildCollection, "collection", "", "collection to rebuild (default from config)")
	rebuildCmd.Flags().BoolVarP(&rebuildQuiet, "quiet", "q", false, "disable the progress bar")
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	collection := rebuildCollection
	if collection == "" {
		collection = cfg.Index.Collection
	}

	var opts []recommenduc.RebuildOption
	if !rebuildQuiet {
		opts = append(opts, recommenduc.WithProgress(newProgress()))
	}

	start := time.Now()
	n, err := a.recommend.RebuildIndex(ctx, a.source, collection, opts...)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	logger.Info("Rebuild complete",
		zap.String("collection", collection),
		zap.Int("documents", n),
		zap.Duration("duration", time.Since(start)),
	)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nRebuild complete:\n")
	fmt.Fprintf(out, "  Collection: %s\n", collection)
	fmt.Fprintf(out, "  Documents:  %d\n", n)
	fmt.Fprintf(out, "  Duration:   %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// newProgress returns a callback that draws a bar once the total is known.
func newProgress() func(done, total int) {
	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		_ = bar.Set(done)
	}
}
