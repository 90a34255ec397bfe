package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/memezap/internal/app"
	"github.com/ironsheep/memezap/internal/imaging"
)

const detectLongDesc string = `Find the text blocks of an image.

Fragments reported by the OCR engine are filtered by confidence and merged
into blocks. Blocks are printed top to bottom with their bounding box.

Examples:
  memezap detect meme.jpg
  memezap detect meme.jpg --json`

func newDetectCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Find text in an image",
		Long:  detectLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withServices(cmd, func(svc *app.Services) error {
				src, err := imaging.ReadFile(args[0])
				if err != nil {
					return err
				}
				regions, err := svc.DetectText(cmd.Context(), src)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if asJSON {
					return printJSON(w, regions)
				}
				if len(regions) == 0 {
					fmt.Fprintln(w, "No text found.")
					return nil
				}
				for i, r := range regions {
					b := r.Bounds()
					fmt.Fprintf(w, "%s %q %s\n",
						headerStyle.Render(fmt.Sprintf("#%d", i+1)),
						r.Text,
						dimStyle.Render(fmt.Sprintf("(%.0f,%.0f)-(%.0f,%.0f) conf %.2f on %s",
							b.MinX, b.MinY, b.MaxX, b.MaxY, r.Confidence, r.Background.Hex)),
					)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print regions as JSON")

	return cmd
}

const cleanLongDesc string = `Erase the text of an image.

Detected text blocks are padded and filled by inpainting, leaving a blank
template. When inpainting fails the original image is written and a
warning is printed.

Examples:
  memezap clean meme.jpg -o blank.png`

func newCleanCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "clean <image>",
		Short: "Remove text from an image",
		Long:  cleanLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withServices(cmd, func(svc *app.Services) error {
				src, err := imaging.ReadFile(args[0])
				if err != nil {
					return err
				}
				cleaned, regions, err := svc.Clean(cmd.Context(), src)
				if cleaned == nil {
					return err
				}
				if ctxErr := cmd.Context().Err(); ctxErr != nil {
					return ctxErr
				}

				w := cmd.OutOrStdout()
				if err != nil {
					fmt.Fprintf(w, "%s %v\n", warnStyle.Render("inpaint failed, writing original:"), err)
				}
				out := output
				if out == "" {
					out = svc.OutputPath("clean")
				}
				if err := imaging.Save(cleaned, out); err != nil {
					return err
				}
				fmt.Fprintf(w, "%s %s %s\n",
					headerStyle.Render("Wrote"),
					pathStyle.Render(out),
					dimStyle.Render(fmt.Sprintf("(%d regions removed)", len(regions))),
				)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: a new file in output.dir)")

	return cmd
}
