package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	wizard "github.com/goliatone/go-wizard"
	"github.com/goliatone/go-wizard/pkg/zaplog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	in      io.Reader
	out     io.Writer
	verbose bool
	envFile string
	logger  *zap.Logger
	config  config
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "nafwizard",
		Short:         "Convert NAF wizard form state to payloads and back",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file read before the environment")

	root.AddCommand(
		a.buildCmd(),
		a.restoreCmd(),
		a.scheduleCmd(),
		a.schemaCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg := zap.NewProductionConfig()
	if a.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.logger = logger

	loaded, err := loadEnvFile(a.envFile)
	if err != nil {
		return err
	}
	if loaded {
		a.logger.Debug("environment loaded", zap.String("file", a.envFile))
	}

	a.config, err = configFromEnv(os.Getenv)
	return err
}

func (a *app) wizard() (*wizard.Wizard, error) {
	evaluator, err := a.config.evaluator()
	if err != nil {
		return nil, err
	}
	return wizard.NewNAF(
		wizard.WithLogger(zaplog.New(a.logger)),
		wizard.WithEnumerations(a.config.Enumerations),
		wizard.WithEvaluator(evaluator),
	)
}

// readJSON decodes the file at path, or stdin when path is empty or "-".
func (a *app) readJSON(path string, target any) error {
	var r io.Reader = a.in
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("no JSON input")
		}
		return fmt.Errorf("decode %s: %w", inputName(path), err)
	}
	return nil
}

func (a *app) writeJSON(value any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func inputName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
