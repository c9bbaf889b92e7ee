// Command cidxmllint validates and inspects XML documents using the
// cidxml engine: "validate" parses with the DTD validator enabled and
// reports every diagnostic, "dump" parses and round-trips the built tree,
// and "catalog check" resolves a public id through a loaded catalog file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lestrrat/cidxml"
	"github.com/lestrrat/cidxml/catalog"
	"github.com/lestrrat/cidxml/cidxmllog"
)

func main() {
	cfg := NewConfig()
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "cidxmllint",
		Short:         "Validate and inspect XML documents with the cidxml engine",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if configPath != "" {
				if err := cfg.LoadConfigFile(configPath); err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file path")
	cfg.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newValidateCmd(cfg),
		newDumpCmd(cfg),
		newCatalogCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *Config) *slog.Logger {
	h, err := cidxmllog.CreateHandlerWithStrings(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		h = cidxmllog.CreateHandler(os.Stderr, slog.LevelInfo, cidxmllog.FormatLogfmt)
	}
	return slog.New(h)
}

func buildParser(cfg *Config) *cidxml.Parser {
	p := cidxml.NewParser()
	var opts cidxml.Options
	if cfg.Validate {
		opts |= cidxml.Validate
	}
	p.SetOptions(opts)
	p.SetMaxErrors(cfg.MaxErrors)
	return p
}

func newValidateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.xml>",
		Short: "Parse and validate a document, reporting every diagnostic",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			logger := newLogger(cfg)
			p := buildParser(cfg)
			_, diags, err := p.ParseFile(args[0])

			errCount := 0
			for _, d := range diags {
				attrs := cidxmllog.DiagnosticAttrs(int(d.Code), d.Severity().String(), d.SystemID, d.Line, d.Column)
				switch d.Severity() {
				case cidxml.SeverityWarning:
					logger.LogAttrs(context.Background(), slog.LevelWarn, d.Message, attrs...)
				default:
					errCount++
					logger.LogAttrs(context.Background(), slog.LevelError, d.Message, attrs...)
				}
			}
			if err != nil {
				return err
			}
			if errCount > 0 {
				os.Exit(clampExitCode(errCount))
			}
			return nil
		},
	}
}

func newDumpCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file.xml>",
		Short: "Parse a document and re-serialize its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p := buildParser(cfg)
			doc, _, err := p.ParseFile(args[0])
			if err != nil {
				return err
			}
			var dumper cidxml.Dumper
			return dumper.DumpDoc(os.Stdout, doc)
		},
	}
}

func newCatalogCmd(cfg *Config) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect a CIDStdCat catalog file",
	}
	catalogCmd.AddCommand(&cobra.Command{
		Use:   "check <publicId>",
		Short: "Resolve a public id through the configured catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if cfg.CatalogPath == "" {
				return fmt.Errorf("cidxmllint: --catalog is required for catalog check")
			}
			cat, err := catalog.LoadFile(cfg.CatalogPath)
			if err != nil {
				return err
			}
			src, ok := cat.Lookup(args[0])
			if !ok {
				return fmt.Errorf("cidxmllint: no mapping for public id %q", args[0])
			}
			fmt.Printf("%s -> %s\n", args[0], src.SystemID())
			return nil
		},
	})
	return catalogCmd
}

// clampExitCode maps an error count to a process exit status; codes above
// 125 are reserved by most shells, so anything past that clamps to 125.
func clampExitCode(errCount int) int {
	if errCount > 125 {
		return 125
	}
	return errCount
}
