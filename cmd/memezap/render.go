package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/memezap/internal/app"
	"github.com/ironsheep/memezap/internal/compositor"
	"github.com/ironsheep/memezap/internal/imaging"
)

const renderLongDesc string = `Render captions onto an image.

The image is matched against the template index. With a match, the
template's detected text regions (or AI-suggested boxes, or white bars)
receive the captions. Without one, the image's own text is erased and the
captions are drawn where it was, or spread down the image when it had none.

Captions are given in reading order, top to bottom.

Examples:
  memezap render drake.jpg -c "writing tests" -c "writing more tests"
  memezap render photo.png -c "top" -c "bottom" -o out.png
  memezap render photo.png -c "hello" --json`

const renderShortDesc string = "Caption an image"

type renderOptions struct {
	captions []string
	output   string
	json     bool
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	o := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <image>",
		Short: renderShortDesc,
		Long:  renderLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withServices(cmd, func(svc *app.Services) error {
				return o.run(cmd, svc, args[0])
			})
		},
	}

	cmd.Flags().StringArrayVarP(&o.captions, "caption", "c", nil, "Caption text, repeat for each caption")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output path (default: a new file in output.dir)")
	cmd.Flags().BoolVar(&o.json, "json", false, "Print the result as JSON")

	return cmd
}

type renderSummary struct {
	Output       string            `json:"output"`
	Layout       compositor.Layout `json:"layout"`
	UsedTemplate bool              `json:"used_template"`
	TemplatePath string            `json:"template_path,omitempty"`
	Similarity   float64           `json:"similarity,omitempty"`
	Regions      int               `json:"regions"`
	Indexed      string            `json:"indexed,omitempty"`
	Trace        compositor.Trace  `json:"trace"`
}

func (o *renderOptions) run(cmd *cobra.Command, svc *app.Services, path string) error {
	src, err := imaging.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := svc.Compositor.Compose(cmd.Context(), compositor.Request{
		Source:   src,
		Captions: o.captions,
		Path:     path,
	})
	if err != nil {
		return err
	}

	out := o.output
	if out == "" {
		out = svc.OutputPath("meme")
	}
	if err := imaging.Save(res.Image, out); err != nil {
		return err
	}

	summary := renderSummary{
		Output:       out,
		Layout:       res.Layout,
		UsedTemplate: res.UsedTemplate,
		TemplatePath: res.TemplatePath,
		Similarity:   res.Similarity,
		Regions:      len(res.Regions),
		Indexed:      res.Indexed,
		Trace:        res.Trace,
	}
	w := cmd.OutOrStdout()
	if o.json {
		return printJSON(w, summary)
	}

	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Wrote"), pathStyle.Render(out))
	field(w, "layout", res.Layout)
	if res.UsedTemplate {
		field(w, "template", fmt.Sprintf("%s %s", res.TemplatePath, scoreStyle.Render(fmt.Sprintf("%.3f", res.Similarity))))
	}
	field(w, "regions", len(res.Regions))
	if res.Indexed != "" {
		field(w, "indexed", res.Indexed)
	}
	for _, e := range res.Trace {
		if e.Err != "" {
			fmt.Fprintf(w, "  %s %s: %s\n", warnStyle.Render("recovered"), e.Stage, e.Err)
		}
	}
	field(w, "elapsed", res.Trace.Total())
	return nil
}
