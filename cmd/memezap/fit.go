package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/memezap/internal/app"
	"github.com/ironsheep/memezap/internal/fontfit"
)

const fitLongDesc string = `Choose a font size for a caption in a box.

The size is clamped to [--min, --max]. Set font.measured in the config to
fit against real glyph metrics instead of the closed-form estimate.

Examples:
  memezap fit "ONE DOES NOT SIMPLY" --width 500 --height 100
  memezap fit "hello" --width 200 --height 40 --min 20 --max 80`

func newFitCmd(root *rootOptions) *cobra.Command {
	var (
		width, height float64
		minSize       int
		maxSize       int
	)

	cmd := &cobra.Command{
		Use:   "fit <text>",
		Short: "Compute a caption font size",
		Long:  fitLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return errors.New("--width and --height must be positive")
			}
			if minSize <= 0 || minSize > maxSize {
				return fmt.Errorf("invalid size bounds [%d, %d]", minSize, maxSize)
			}

			r, err := app.NewRenderer(root.cfg.Font)
			if err != nil {
				return err
			}

			size := r.Fit(args[0], width, height, fontfit.NewBounds(minSize, maxSize))
			w, h := r.Measure(args[0], size)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d\n", headerStyle.Render("size"), size)
			field(out, "rendered", fmt.Sprintf("%dx%d", w, h))
			field(out, "font", r.Font().Name())
			return nil
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "Box width in pixels")
	cmd.Flags().Float64Var(&height, "height", 0, "Box height in pixels")
	cmd.Flags().IntVar(&minSize, "min", 10, "Smallest size")
	cmd.Flags().IntVar(&maxSize, "max", 100, "Largest size")

	return cmd
}
