package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/memezap/internal/config"
)

const configLongDesc string = `Manage memezap configuration.

Configuration is stored as memezap.toml and provides defaults for every
command. MEMEZAP_* environment variables override the file, with dots in
keys replaced by underscores (MEMEZAP_INDEX_BACKEND, MEMEZAP_OCR_ENGINE).

  memezap config init    Write the default configuration
  memezap config show    Print the effective configuration`

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  configLongDesc,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(root))

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the default configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Write(config.NewDefaultConfig(), path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", headerStyle.Render("Wrote"), pathStyle.Render(path))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", config.FileName, "Where to write the file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if used := root.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(w, "# %s\n", used)
			} else {
				fmt.Fprintln(w, "# no config file found, using defaults")
			}
			data, err := config.Encode(root.cfg)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		},
	}
}
