package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/memezap/internal/app"
)

const doctorLongDesc string = `Check that the pipeline can run.

Builds the OCR engine and the embedding extractor and reports what is in
use, along with the index and cache backends. Exits non-zero when the OCR
engine cannot be built.`

func newDoctorCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report OCR, embedding, index and cache readiness",
		Long:  doctorLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withServices(cmd, func(svc *app.Services) error {
				info := svc.Info()

				w := cmd.OutOrStdout()
				if asJSON {
					if err := printJSON(w, info); err != nil {
						return err
					}
				} else {
					fmt.Fprintln(w, headerStyle.Render("OCR"))
					field(w, "engine", info.OCR.Engine)
					if info.OCR.Version != "" {
						field(w, "version", info.OCR.Version)
					}
					if info.OCR.Language != "" {
						field(w, "language", info.OCR.Language)
					}
					fmt.Fprintln(w, headerStyle.Render("Embedding"))
					field(w, "extractor", info.Extractor)
					field(w, "dimension", info.Dimension)
					fmt.Fprintln(w, headerStyle.Render("Storage"))
					field(w, "index", fmt.Sprintf("%s (%d templates)", info.Index.Backend, info.Index.Count))
					field(w, "cache", info.Cache)
					fmt.Fprintln(w, headerStyle.Render("Rendering"))
					field(w, "font", info.Font)
					field(w, "inpaint", info.Inpaint)
					field(w, "suggest", info.Suggest)
				}

				if !info.OCR.Available {
					return fmt.Errorf("ocr engine %s unavailable: %s", info.OCR.Engine, info.OCR.Error)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}
