package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"bitforge/analyzer"
	"bitforge/codegen"
	"bitforge/config"
	"bitforge/lexer"
	"bitforge/parser"
	"bitforge/token"
)

// replCmd implements the `repl` subcommand: an interactive session that
// accumulates a function declaration across lines, then lexes, parses,
// analyzes and emits it on completion, and prints the emitted C. The
// preprocessor is not run, so mask blocks and Name.field references are
// not accepted here.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive bit-DSL session" }
func (*replCmd) Usage() string {
	return `repl:
  Read function declarations interactively and print their emitted C.
`
}

func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to bitforge!")

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       ">>> ",
		HistoryFile:  cfg.REPL.HistoryFile,
		HistoryLimit: cfg.REPL.HistorySize,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start REPL: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var buffer strings.Builder
	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		lex := lexer.New(source)
		tokens, err := lex.Scan()
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		program, err := parser.Make(tokens).Parse()
		if err != nil {
			if syntaxErr, ok := err.(parser.SyntaxError); ok && isAtEOF(syntaxErr, tokens[len(tokens)-1]) {
				continue
			}
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		a := analyzer.New()
		out, err := a.Analyze(program)
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		argBits := 0
		for _, fn := range program.Funcs {
			if fn.Name.Lexeme == "main" {
				argBits = fn.ArgBits
			}
		}
		fmt.Print(codegen.Emit(cfg.Compile.DefaultFunctionName, a.Pool, argBits, out))
		buffer.Reset()
	}
}

// isInputReady reports whether the accumulated tokens form a complete
// input: braces must balance, and the last non-EOF token must not be one
// that obviously expects a continuation.
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			braceBalance++
		case token.RCUR:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.TokenType {
	case token.ASSIGN, token.AMP, token.PIPE, token.CARET, token.TILDE,
		token.EQUAL_EQUAL, token.NOT_EQUAL, token.AND_AND, token.OR_OR,
		token.SHL, token.SHR, token.ROL, token.ROR, token.CONCAT,
		token.LPA, token.LCUR, token.LBRACKET, token.COLON,
		token.FUNCTION, token.RETURN:
		return false
	}
	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}

// isAtEOF reports whether a syntax error was raised at the position of the
// stream's trailing EOF token - a sign the user simply hasn't finished
// typing yet, rather than made a real mistake.
func isAtEOF(err parser.SyntaxError, eof token.Token) bool {
	return err.Line == eof.Line && err.Column == eof.Column
}
