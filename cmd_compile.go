package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"bitforge/analyzer"
	"bitforge/bitcode"
	"bitforge/codegen"
	"bitforge/config"
	"bitforge/lexer"
	"bitforge/parser"
	"bitforge/preprocessor"
)

// compileCmd implements the `compile` subcommand: the full pipeline from
// source file to emitted C function.
type compileCmd struct {
	output      string
	funcName    string
	dumpBitcode bool
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a bit-DSL source file to a C function" }
func (*compileCmd) Usage() string {
	return `compile [-o output] [-name funcname] [-dump-bitcode] <file>:
  Preprocess, lex, parse, analyze and emit a C function from a bit-DSL source file.
`
}

func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	f.StringVar(&c.output, "o", "", "output file for the emitted C function (stdout if empty)")
	f.StringVar(&c.funcName, "name", cfg.Compile.DefaultFunctionName, "name of the emitted C function")
	f.BoolVar(&c.dumpBitcode, "dump-bitcode", cfg.Compile.DumpBitcode, "also write a hex and disassembly dump of the bit pool")
}

func (c *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	a := analyzer.New()
	out, err := a.Analyze(program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	argBits := 0
	for _, fn := range program.Funcs {
		if fn.Name.Lexeme == "main" {
			argBits = fn.ArgBits
		}
	}

	code := codegen.Emit(c.funcName, a.Pool, argBits, out)

	if c.output == "" {
		fmt.Print(code)
	} else if err := os.WriteFile(c.output, []byte(code), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write output file: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.dumpBitcode {
		ins := bitcode.Assemble(a.Pool)
		base := c.funcName
		if c.output != "" {
			base = trimExt(c.output)
		}
		if err := bitcode.DumpHexToFile(ins, base+".hex"); err != nil {
			fmt.Fprintf(os.Stderr, "💥 bitcode hex dump error: %v\n", err)
		}
		if err := bitcode.WriteDisassemblyToFile(ins, base+".dis"); err != nil {
			fmt.Fprintf(os.Stderr, "💥 bitcode disassemble error: %v\n", err)
		}
	}

	return subcommands.ExitSuccess
}

func trimExt(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)]
}
