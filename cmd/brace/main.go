// Command brace renders brace templates from the command line.
//
//	brace render page.html --context data.yaml --partials partials/
//	brace check page.html header.html
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dkeller/brace"
	"github.com/dkeller/brace/parse"
)

// envConfig carries settings read from the environment; flags take
// precedence where both exist.
type envConfig struct {
	LogLevel string `env:"BRACE_LOG_LEVEL" envDefault:"warn"`
	NoCache  bool   `env:"BRACE_NO_CACHE" envDefault:"false"`
}

var (
	contextFile string
	partialsDir string
	baseDir     string
	outFile     string
)

func main() {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	var root = &cobra.Command{
		Use:           "brace",
		Short:         "Render brace templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var renderCmd = &cobra.Command{
		Use:   "render <template-file>",
		Short: "Render a template file against a YAML or JSON context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cfg, logger, args[0])
		},
	}
	renderCmd.Flags().StringVarP(&contextFile, "context", "c", "", "YAML or JSON file holding the binding context")
	renderCmd.Flags().StringVarP(&partialsDir, "partials", "p", "", "directory of partial templates, registered by base name")
	renderCmd.Flags().StringVarP(&baseDir, "base", "b", ".", "base directory for relative template references")
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "", "write output to a file instead of stdout")

	var checkCmd = &cobra.Command{
		Use:   "check <template-file>...",
		Short: "Parse templates and report structural errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}

	root.AddCommand(renderCmd, checkCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid BRACE_LOG_LEVEL %q: %w", level, err)
	}
	var cfg = zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func runRender(cfg envConfig, logger *zap.Logger, templateFile string) error {
	var opts = []brace.Option{
		brace.WithBaseDir(baseDir),
		brace.WithLogger(logger),
	}
	if cfg.NoCache {
		opts = append(opts, brace.WithCacheDisabled())
	}
	var engine = brace.New(opts...)

	if partialsDir != "" {
		if err := registerPartials(engine, partialsDir); err != nil {
			return err
		}
	}

	var binding map[string]interface{}
	if contextFile != "" {
		b, err := os.ReadFile(contextFile)
		if err != nil {
			return fmt.Errorf("reading context: %w", err)
		}
		// YAML is a superset of JSON, so either works here.
		if err := yaml.Unmarshal(b, &binding); err != nil {
			return fmt.Errorf("parsing context %s: %w", contextFile, err)
		}
	}

	out, err := engine.RenderFile(templateFile, binding)
	if err != nil {
		return err
	}
	if outFile == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	return os.WriteFile(outFile, []byte(out), 0o644)
}

// registerPartials registers every regular file in dir as a partial named
// by its base name without extension.
func registerPartials(engine *brace.Engine, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading partials dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("reading partial %s: %w", e.Name(), err)
		}
		var name = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := engine.RegisterPartial(name, string(b)); err != nil {
			return err
		}
	}
	return nil
}

func runCheck(files []string) error {
	var failed bool
	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if _, err := parse.Parse(file, string(b)); err != nil {
			failed = true
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Printf("%s: ok\n", file)
	}
	if failed {
		return fmt.Errorf("some templates failed to parse")
	}
	return nil
}
