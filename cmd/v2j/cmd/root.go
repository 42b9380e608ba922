package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/v2j/pkg/circuit"
	"github.com/OpenTraceLab/v2j/pkg/config"
	"github.com/OpenTraceLab/v2j/pkg/hdl"
	"github.com/OpenTraceLab/v2j/pkg/schema"
)

var (
	// Global flags
	sourceFile string
	configPath string
	verbose    bool
	logLevel   string
	logFormat  string

	// Compile flags
	outputBase string
	format     string
	toStdout   bool
	noValidate bool
)

var rootCmd = &cobra.Command{
	Use:   "v2j -f <source> [-o <output>]",
	Short: "Transistor-level netlist compiler",
	Long: `Compile a structural netlist of modules, ports, wires, pmos/nmos
transistors and sub-module instances into a connectivity graph, written
as a JSON document keyed by module name.

Atom modules are read from config.json in the working directory
(AtomModules list) unless another file is given with --config.

Examples:
  v2j -f adder4.v                      # writes adder4.v.json
  v2j -f adder4.v -o build/adder4      # writes build/adder4.json
  v2j -f adder4.v --format kicad       # writes adder4.v.net
  v2j info -f adder4.v                 # summarize the modules`,
	Args:          cobra.NoArgs,
	RunE:          runCompile,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&sourceFile, "file", "f", "", "source file to compile (required)")
	pf.StringVarP(&configPath, "config", "c", "", "config file with AtomModules (default \""+config.DefaultPath+"\")")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text, json")
	rootCmd.MarkPersistentFlagRequired("file")

	f := rootCmd.Flags()
	f.StringVarP(&outputBase, "output", "o", "", "output path without extension (default <source>)")
	f.StringVar(&format, "format", "json", "output format: json, kicad")
	f.BoolVar(&toStdout, "stdout", false, "write the document to stdout instead of a file")
	f.BoolVar(&noValidate, "no-validate", false, "skip schema validation of the JSON document")
}

func newCommandLogger(cmd *cobra.Command) *slog.Logger {
	level := logLevel
	if verbose {
		level = "debug"
	}
	return newLogger(level, logFormat, cmd.ErrOrStderr())
}

// loadConfig reads the atom allow-list. A missing default config file is not
// an error; a missing file named with --config is.
func loadConfig(logger *slog.Logger) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			logger.Warn("config file not found, no atom modules defined", "path", path)
			return config.DefaultConfig(), nil
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", path, "atoms", len(cfg.AtomModules))
	return cfg, nil
}

// compileSource compiles the --file source with the configured atoms.
func compileSource(logger *slog.Logger) (*circuit.Registry, error) {
	cfg, err := loadConfig(logger)
	if err != nil {
		return nil, err
	}

	compiler := hdl.NewCompiler(cfg.AtomModules, hdl.WithLogger(logger))
	return compiler.CompileFile(sourceFile)
}

func runCompile(cmd *cobra.Command, args []string) error {
	logger := newCommandLogger(cmd)

	ext, err := formatExtension(format)
	if err != nil {
		return err
	}

	reg, err := compileSource(logger)
	if err != nil {
		return err
	}

	data, err := render(reg)
	if err != nil {
		return err
	}

	if toStdout {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	path := outputPath(ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("wrote output", "path", path, "modules", reg.Len())

	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Compiled %d module(s) from %s to %s\n", reg.Len(), sourceFile, path)
	}
	return nil
}

func formatExtension(name string) (string, error) {
	switch name {
	case "json":
		return ".json", nil
	case "kicad":
		return ".net", nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or kicad)", name)
	}
}

// outputPath appends the format extension to -o, or to the source path when
// -o is not given.
func outputPath(ext string) string {
	if outputBase != "" {
		return outputBase + ext
	}
	return sourceFile + ext
}

func render(reg *circuit.Registry) ([]byte, error) {
	if format == "kicad" {
		netlist, err := circuit.ExportKiCad(reg)
		if err != nil {
			return nil, fmt.Errorf("failed to export netlist: %w", err)
		}
		return []byte(netlist), nil
	}

	data, err := circuit.MarshalDocument(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	if noValidate {
		return data, nil
	}

	v, err := schema.New()
	if err != nil {
		return nil, err
	}
	if err := v.ValidateDocument(data); err != nil {
		return nil, fmt.Errorf("output document failed validation: %w", err)
	}
	return data, nil
}
