package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/memezap/internal/app"
	"github.com/ironsheep/memezap/internal/config"
	"github.com/ironsheep/memezap/internal/logger"
)

const rootLongDesc string = `memezap captions meme images.

Each render looks the image up in an index of blank templates. When a match
is found its text regions are reused on the clean template; otherwise the
image's own text is found, erased and replaced by the new captions.

Configuration is read from memezap.toml in the working directory or in
.memezap/, and from MEMEZAP_* environment variables.

Examples:
  memezap render drake.jpg -c "writing tests" -c "writing more tests"
  memezap index build ./templates --clean
  memezap serve`

const rootShortDesc string = "Meme template matching and captioning"

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

// rootOptions carry global flags and the state built from them.
type rootOptions struct {
	configPath string
	debug      bool
	logFormat  string

	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "memezap",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return o.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "Config file (default memezap.toml or .memezap/memezap.toml)")
	cmd.PersistentFlags().BoolVarP(&o.debug, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "Log format: text, pretty or json")

	cmd.AddCommand(newRenderCmd(o))
	cmd.AddCommand(newDetectCmd(o))
	cmd.AddCommand(newCleanCmd(o))
	cmd.AddCommand(newIndexCmd(o))
	cmd.AddCommand(newFitCmd(o))
	cmd.AddCommand(newServeCmd(o))
	cmd.AddCommand(newConfigCmd(o))
	cmd.AddCommand(newDoctorCmd(o))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// load reads configuration and builds the logger. Flags bound here take
// precedence over the file and the environment.
func (o *rootOptions) load(cmd *cobra.Command) error {
	v, err := config.InitViper(o.configPath)
	if err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("log-format"); f != nil {
		if err := v.BindPFlag("log.format", f); err != nil {
			return fmt.Errorf("binding log-format: %w", err)
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	o.v = v
	o.cfg = cfg
	o.logger = newLogger(cfg.Log, o.debug, cmd.ErrOrStderr())
	return nil
}

func newLogger(cfg config.LogConfig, debug bool, w io.Writer) *slog.Logger {
	opts := []logger.Option{
		logger.WithLevel(logger.ParseLevel(cfg.Level)),
		logger.WithPretty(cfg.Format == "pretty"),
		logger.WithJSON(cfg.Format == "json"),
		logger.WithWriter(w),
	}
	if debug {
		opts = append(opts, logger.WithDebug(true))
	}
	return logger.New(opts...)
}

// services builds the pipeline. Callers close it.
func (o *rootOptions) services(ctx context.Context) (*app.Services, error) {
	svc, err := app.New(ctx, o.cfg, o.logger)
	if err != nil {
		return nil, fmt.Errorf("starting services: %w", err)
	}
	return svc, nil
}

// withServices runs fn against freshly built services and closes them.
func (o *rootOptions) withServices(cmd *cobra.Command, fn func(*app.Services) error) error {
	svc, err := o.services(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			o.logger.Warn("closing services", "err", err)
		}
	}()
	return fn(svc)
}
