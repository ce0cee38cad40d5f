/*
Obelix runs scripts written in the Obelix language, or starts an interactive
session when no script is given.

Usage:

	obelix [flags] [script] [args...]

The flags are:

	-v, --version
		Give the current version of Obelix and then exit.

	-g, --grammar FILE
		Load the language grammar from the given TOML descriptor. Required
		for any parse to happen.

	-d, --debug CATEGORIES
		Comma-separated list of debug categories to enable (lexer, parser,
		eval). Only the "parser" category has an effect: when a script is
		run, the parser session ID and the script path are printed to
		stderr before parsing starts.

	-s, --syspath PATH
		Additional system-level directories, colon-separated, searched for
		the script file when it is not found as given, after the
		--userpath directories.

	-p, --userpath PATH
		Additional user-level directories, colon-separated, searched for
		the script file when it is not found as given.

Once a session has started, input is parsed against the loaded grammar and
each statement's final reduced value is printed. To exit an interactive
session, send EOF (Ctrl+D) or type ".exit".
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/rosed"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/obelix-lang/obelix/internal/obactions"
	"github.com/obelix-lang/obelix/internal/obast"
	"github.com/obelix-lang/obelix/internal/obgrammar"
	"github.com/obelix-lang/obelix/internal/obgrammar/obtoml"
	"github.com/obelix-lang/obelix/internal/oblex"
	"github.com/obelix-lang/obelix/internal/obparse"
	"github.com/obelix-lang/obelix/internal/obrt"
	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
	"github.com/obelix-lang/obelix/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue loading the grammar or script.
	ExitInitError

	// ExitRunError indicates an unsuccessful program execution due to a
	// parse or evaluation failure.
	ExitRunError
)

var (
	returnCode = ExitSuccess

	flagVersion  = pflag.BoolP("version", "v", false, "Gives the version info")
	flagGrammar  = pflag.StringP("grammar", "g", "", "The TOML grammar descriptor to load")
	flagDebug    = pflag.StringP("debug", "d", "", "Comma-separated debug categories to enable")
	flagSysPath  = pflag.StringP("syspath", "s", "", "Additional system-level resource search path")
	flagUserPath = pflag.StringP("userpath", "p", "", "Additional user-level resource search path")

	errColor = color.New(color.FgRed)
	valColor = color.New(color.FgYellow)
)

// errWrapWidth bounds how wide a reported exception message is allowed to
// get before wrapping, since exception chains (a Wrap'd cause appended to
// a formatted message) can run long.
const errWrapWidth = 100

// reportLine wraps msg to errWrapWidth, grounded on the teacher's own use
// of rosed to wrap console output (engine.go's consoleMessage handling).
func reportLine(msg string) string {
	return rosed.Edit(msg).Wrap(errWrapWidth).String()
}

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		}
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if *flagGrammar == "" {
		errColor.Fprintln(os.Stderr, "ERROR: a grammar file is required (-g)")
		returnCode = ExitInitError
		return
	}

	grammar, err := obtoml.Load(*flagGrammar, obactions.New())
	if err != nil {
		errColor.Fprintln(os.Stderr, reportLine("ERROR: loading grammar: "+err.Error()))
		returnCode = ExitInitError
		return
	}

	args := pflag.Args()
	if len(args) > 0 {
		scriptPath := resolveScriptPath(args[0])
		returnCode = runScript(grammar, scriptPath, args[1:])
		return
	}

	returnCode = runRepl(grammar)
}

// runScript parses and fully reduces script at path in one shot, printing
// the final value. An Exit exception's integer payload becomes the negated
// exit code; any other parse or evaluation error returns ExitRunError.
func runScript(grammar *obgrammar.Grammar, path string, scriptArgs []string) int {
	f, err := os.Open(path)
	if err != nil {
		errColor.Fprintln(os.Stderr, reportLine("ERROR: "+err.Error()))
		return ExitInitError
	}
	defer f.Close()

	lx := oblex.Create(f)
	lx.SetOption(oblex.IgnoreAllWhitespace, true)
	for code, text := range grammar.KeywordTexts() {
		lx.AddKeyword(code, text)
	}

	p := obparse.New(grammar, lx)
	declareScriptArgs(p, scriptArgs)

	if debugEnabled("parser") {
		fmt.Fprintf(os.Stderr, "[parser] session %s starting on %s\n", p.ID, path)
	}

	if err := p.Parse(); err != nil {
		errColor.Fprintln(os.Stderr, reportLine("ERROR: "+err.Error()))
		return ExitRunError
	}

	node, err := topNode(p)
	if err != nil {
		errColor.Fprintln(os.Stderr, reportLine("ERROR: "+err.Error()))
		return ExitRunError
	}

	result, err := obast.Reduce(node, obast.NewContext())
	if err != nil {
		return reportEvalError(err)
	}
	if result != nil {
		fmt.Println(result.String())
	}
	return ExitSuccess
}

// runRepl reads statements one line at a time, evaluating each against a
// single persistent Context so names declared on one line are visible on
// the next, grounded on akashmaji946-go-mix's repl.Repl.Start loop.
func runRepl(grammar *obgrammar.Grammar) int {
	rl, err := readline.New("obelix> ")
	if err != nil {
		errColor.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitInitError
	}
	defer rl.Close()

	fmt.Printf("Obelix %s -- interactive session. Type \".exit\" or press Ctrl+D to quit.\n", version.Current)

	ctx := obast.NewContext()
	for {
		line, err := rl.Readline()
		if err != nil {
			fmt.Println("Good bye!")
			return ExitSuccess
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ".exit" {
			fmt.Println("Good bye!")
			return ExitSuccess
		}
		rl.SaveHistory(line)

		lx := oblex.Create(strings.NewReader(line))
		lx.SetOption(oblex.IgnoreAllWhitespace, true)
		for code, text := range grammar.KeywordTexts() {
			lx.AddKeyword(code, text)
		}

		p := obparse.New(grammar, lx)
		if err := p.Parse(); err != nil {
			errColor.Fprintln(os.Stderr, reportLine(err.Error()))
			continue
		}

		node, err := topNode(p)
		if err != nil {
			errColor.Fprintln(os.Stderr, reportLine(err.Error()))
			continue
		}

		result, err := obast.Reduce(node, ctx)
		if err != nil {
			reportEvalError(err)
			continue
		}
		if result != nil {
			valColor.Printf("%s\n", result.String())
		}
	}
}

// topNode pops a completed parse's single surviving data-stack entry, the
// AST built by whatever standard actions the grammar's entrypoint fired.
func topNode(p *obparse.Parser) (obast.Node, error) {
	v, err := p.Pop()
	if err != nil {
		return nil, obxerr.Wrap(err, obxerr.InternalError, "parse completed without leaving a result on the data stack")
	}
	nv, ok := v.(obast.NodeValue)
	if !ok {
		return nil, obxerr.New(obxerr.InternalError, "parse result is not an AST node (%T)", v)
	}
	return nv.N, nil
}

// resolveScriptPath checks name as given first, then each colon-separated
// directory of --userpath followed by --syspath, mirroring spec.md §6's
// "user include path is searched before the system include path."
func resolveScriptPath(name string) string {
	if _, err := os.Stat(name); err == nil {
		return name
	}
	for _, dir := range splitPath(*flagUserPath) {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	for _, dir := range splitPath(*flagSysPath) {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return name
}

func splitPath(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, string(os.PathListSeparator))
}

// debugEnabled reports whether category was named in --debug's
// comma-separated list.
func debugEnabled(category string) bool {
	for _, c := range strings.Split(*flagDebug, ",") {
		if strings.TrimSpace(c) == category {
			return true
		}
	}
	return false
}

// declareScriptArgs exposes a running script's own command-line arguments
// as an "args" list value, visible to the grammar's actions via Parser.Get
// the same way any other cross-action variable is.
func declareScriptArgs(p *obparse.Parser, scriptArgs []string) {
	values := make([]obvalue.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		values[i] = obrt.String(a)
	}
	p.Set("args", obrt.NewList(values...))
}

// reportEvalError prints err, distinguishing the Exit control-flow kind
// (whose payload becomes the process exit code) from an ordinary
// evaluation exception.
func reportEvalError(err error) int {
	if exc, ok := obxerr.As(err, obxerr.Exit); ok {
		code := 0
		if prim, ok := exc.Payload.(obrt.Primitive); ok {
			code = prim.Int()
		}
		return -code
	}
	errColor.Fprintln(os.Stderr, reportLine("ERROR: "+err.Error()))
	return ExitRunError
}
