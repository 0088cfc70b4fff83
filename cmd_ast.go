package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"bitforge/lexer"
	"bitforge/parser"
	"bitforge/preprocessor"
)

// astCmd implements the `ast` subcommand: prints (and optionally writes)
// the parsed program as JSON, for inspecting what the parser produced.
type astCmd struct {
	output string
}

func (*astCmd) Name() string     { return "ast" }
func (*astCmd) Synopsis() string { return "Print the JSON AST of a bit-DSL source file" }
func (*astCmd) Usage() string {
	return `ast [-o output] <file>:
  Preprocess, lex and parse a bit-DSL source file, then print its AST as JSON.
`
}

func (c *astCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "also write the AST JSON to this file")
}

func (c *astCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	source, err := preprocessor.Process(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	lex := lexer.New(source)
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	program, err := parser.Make(tokens).Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.output == "" {
		if _, err := parser.PrintASTJSON(program); err != nil {
			fmt.Fprintf(os.Stderr, "💥 AST print error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if err := parser.WriteASTJSONToFile(program, c.output); err != nil {
		fmt.Fprintf(os.Stderr, "💥 AST dump error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
