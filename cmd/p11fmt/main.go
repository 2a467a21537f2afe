// Package main provides the CLI entry point for p11fmt, a tool that
// parses a p11 document and either prints its section tree or
// projects it into a typed value and dumps that as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastn-community/p11/internal/ast"
	"github.com/fastn-community/p11/internal/p11"
)

func main() {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:   "p11fmt [flags] <file.p11>",
		Short: "Parse and inspect p11 documents",
		Long: `p11fmt parses a p11 document and prints its section tree. Given --kind,
it instead projects the document into a typed variable value and prints
that as JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(cfg, args[0])
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *Config, path string) error {
	if cfg.ConditionKey == "" {
		return fmt.Errorf("%w: --condition-key must not be empty", ErrInvalidOption)
	}

	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	sections, err := p11.Parse(string(content), path)
	if err != nil {
		return err
	}

	var out []byte
	if cfg.Kind != "" {
		out, err = projectedJSON(sections, cfg, path)
	} else {
		out = []byte(treeString(sections))
	}
	if err != nil {
		return err
	}

	return writeOutput(cfg.Output, out)
}

func projectedJSON(sections []*p11.Section, cfg *Config, docID string) ([]byte, error) {
	kind, err := ast.ParseVariableKind(cfg.Kind, docID, 1)
	if err != nil {
		return nil, err
	}
	isCondition := func(key string, _ *string) bool { return key == cfg.ConditionKey }

	values := make([]ast.Value, 0, len(sections))
	for _, s := range sections {
		v, err := ast.FromSectionWithModifier(s, docID, kind, isCondition)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	out, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return append(out, '\n'), nil
}

func treeString(sections []*p11.Section) string {
	var b strings.Builder
	for _, s := range sections {
		writeSection(&b, s, 0)
	}
	return b.String()
}

func writeSection(b *strings.Builder, s *p11.Section, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s-- %s (line %d)\n", indent, s.Name, s.LineNumber)
	if s.Caption != nil && s.Caption.Value != nil {
		fmt.Fprintf(b, "%s  caption: %s\n", indent, *s.Caption.Value)
	}
	for _, h := range s.Headers {
		writeHeader(b, h, depth+1)
	}
	if s.Body != nil {
		fmt.Fprintf(b, "%s  body: %s\n", indent, s.Body.Value)
	}
	for _, sub := range s.SubSections {
		writeSection(b, sub, depth+1)
	}
}

func writeHeader(b *strings.Builder, h p11.Header, depth int) {
	indent := strings.Repeat("  ", depth)
	switch header := h.(type) {
	case *p11.KVHeader:
		if header.Value != nil {
			fmt.Fprintf(b, "%s%s: %s\n", indent, header.KeyName, *header.Value)
		} else {
			fmt.Fprintf(b, "%s%s: (absent)\n", indent, header.KeyName)
		}
	case *p11.SectionHeader:
		fmt.Fprintf(b, "%s%s:\n", indent, header.KeyName)
		for _, s := range header.Sections {
			writeSection(b, s, depth+1)
		}
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}
