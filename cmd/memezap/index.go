package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/memezap/internal/app"
	"github.com/ironsheep/memezap/internal/imaging"
)

const indexLongDesc string = `Manage the template index.

The index maps template image paths to embeddings. Renders search it for a
blank template matching the input, and add inputs that matched nothing.

  memezap index build <dir>     Embed every jpg, jpeg and png under dir
  memezap index search <image>  Show the closest templates
  memezap index stats           Show size, dimension and backend`

func newIndexCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the template index",
		Long:  indexLongDesc,
	}

	cmd.AddCommand(newIndexBuildCmd(root))
	cmd.AddCommand(newIndexSearchCmd(root))
	cmd.AddCommand(newIndexStatsCmd(root))

	return cmd
}

const indexBuildLongDesc string = `Add every image under a directory to the index.

Images are embedded by a bounded pool of workers and added in one batch.
Paths already in the index are skipped. Use --clean to remove text before
embedding, which matches how renders query the index, and --reset to
rebuild from scratch.

Examples:
  memezap index build ./templates
  memezap index build ./templates --clean --workers 8
  memezap index build ./templates --reset`

func newIndexBuildCmd(root *rootOptions) *cobra.Command {
	opts := app.IngestOptions{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "build <dir>",
		Short: "Index a directory of templates",
		Long:  indexBuildLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withServices(cmd, func(svc *app.Services) error {
				paths, err := app.FindImages(args[0])
				if err != nil {
					return err
				}
				res, err := svc.Ingest(cmd.Context(), paths, opts)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if asJSON {
					return printJSON(w, res)
				}
				fmt.Fprintf(w, "%s %d images in %s\n", headerStyle.Render("Found"), res.Found, res.Duration.Round(time.Millisecond))
				field(w, "added", res.Added)
				field(w, "skipped", res.Skipped)
				field(w, "indexed", svc.Index.Len())
				for _, p := range res.Failed {
					fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("failed"), p)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Remove text before embedding")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "Empty the index first")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Concurrent extractions (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

const indexSearchLongDesc string = `Show the templates most similar to an image.

Examples:
  memezap index search meme.jpg
  memezap index search meme.jpg -k 10 --threshold 0.5 --clean`

func newIndexSearchCmd(root *rootOptions) *cobra.Command {
	var (
		k         int
		threshold float64
		clean     bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "search <image>",
		Short: "Find similar templates",
		Long:  indexSearchLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if k <= 0 {
				return fmt.Errorf("-k must be positive, got %d", k)
			}
			return root.withServices(cmd, func(svc *app.Services) error {
				src, err := imaging.ReadFile(args[0])
				if err != nil {
					return err
				}
				vec, err := svc.Embed(cmd.Context(), src, clean)
				if err != nil {
					return err
				}
				matches := svc.Index.SearchTopK(vec, k, threshold)

				w := cmd.OutOrStdout()
				if asJSON {
					return printJSON(w, matches)
				}
				if len(matches) == 0 {
					fmt.Fprintln(w, "No matches.")
					return nil
				}
				for i, m := range matches {
					fmt.Fprintf(w, "%s %s %s\n",
						headerStyle.Render(fmt.Sprintf("#%d", i+1)),
						scoreStyle.Render(fmt.Sprintf("%.4f", m.Score)),
						pathStyle.Render(m.Path),
					)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&k, "top", "k", 5, "Number of matches")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove text before embedding")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print matches as JSON")

	return cmd
}

func newIndexStatsCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withServices(cmd, func(svc *app.Services) error {
				stats := svc.Index.Stats()

				w := cmd.OutOrStdout()
				if asJSON {
					return printJSON(w, stats)
				}
				fmt.Fprintln(w, headerStyle.Render("Template index"))
				field(w, "backend", stats.Backend)
				field(w, "persisted", stats.Persisted)
				field(w, "templates", stats.Count)
				field(w, "dimension", stats.Dimension)
				field(w, "directories", stats.Directories)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statistics as JSON")

	return cmd
}
