package main

import (
	"errors"

	"github.com/spf13/pflag"
)

var (
	ErrReadInput     = errors.New("read input")
	ErrWriteOutput   = errors.New("write output")
	ErrInvalidOption = errors.New("invalid option")
)

// Flags holds the CLI flag names, allowing callers to customize them
// while keeping sensible defaults.
type Flags struct {
	Kind          string
	ConditionKey  string
	Output        string
}

// Config holds CLI flag values controlling how a parsed document is
// projected and printed.
type Config struct {
	Flags        Flags
	Kind         string
	ConditionKey string
	Output       string
}

// NewConfig returns a new Config with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Kind:         "kind",
			ConditionKey: "condition-key",
			Output:       "output",
		},
	}
}

// RegisterFlags adds p11fmt's flags to the given *pflag.FlagSet.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Kind, c.Flags.Kind, "",
		"declared variable kind (e.g. \"string\", \"optional string\", \"string list\"); "+
			"when set, the file is projected into a typed value instead of printed as a section tree")
	flags.StringVar(&c.ConditionKey, c.Flags.ConditionKey, "if",
		"header key recognised as a condition and excluded from projected records")
	flags.StringVarP(&c.Output, c.Flags.Output, "o", "-",
		"output file path (- for stdout)")
}
