package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/example/pulse/builtins"
	"github.com/example/pulse/eventloop"
	"github.com/example/pulse/interpreter"
	"github.com/example/pulse/module"
	"github.com/example/pulse/parser"
	"github.com/example/pulse/runtime"
)

const (
	appName     = "pulse"
	version     = "0.1.0"
	historyFile = ".pulse_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "-e":
		os.Exit(cmdEval(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl())
	case "version":
		fmt.Println(version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Pulse %s

Usage:
  %s run <file.pulse>   Run a script and drive the event loop to quiescence.
  %s -e "code"          Evaluate inline code.
  %s repl               Start the interactive REPL.
  %s version            Print the version.
`, version, appName, appName, appName, appName)
}

// newInterpreter wires the standard pieces together: event loop, file
// module loader, builtins.
func newInterpreter() (*interpreter.Interpreter, *eventloop.Loop) {
	loop := eventloop.New()
	var interp *interpreter.Interpreter
	loader := module.NewFileLoader(func(source, path string) (map[string]*runtime.Value, error) {
		return interp.EvalModule(source, path)
	})
	interp = interpreter.New(
		interpreter.WithLoop(loop),
		interpreter.WithLoader(loader),
	)
	builtins.RegisterAll(interp.GlobalEnv())
	return interp, loop
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.pulse>\n", appName)
		return 2
	}

	file := fs.Arg(0)
	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	abs := file
	if a, aerr := filepath.Abs(file); aerr == nil {
		abs = a
	}

	interp, loop := newInterpreter()
	if _, err := interp.EvalScript(string(source), abs); err != nil {
		fmt.Fprintln(os.Stderr, errorText(err))
		return 1
	}
	loop.Run()
	return 0
}

func cmdEval(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s -e \"code\"\n", appName)
		return 2
	}

	interp, loop := newInterpreter()
	result, err := interp.Eval(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, errorText(err))
		return 1
	}
	loop.Run()

	if result != nil && result.Type != runtime.TypeUndefined {
		fmt.Println(result.ToString())
	}
	return 0
}

func cmdRepl() int {
	fmt.Printf("Pulse %s REPL\nCtrl+C cancels input, Ctrl+D exits.\n", version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	interp, loop := newInterpreter()

	for {
		code, ok := readByParseProbe(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}

		result, err := interp.Eval(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorText(err))
			continue
		}
		loop.Run()

		if result != nil && result.Type != runtime.TypeUndefined {
			fmt.Println(result.ToString())
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readByParseProbe accumulates lines until the source parses, or fails
// with an error that is not just premature end of input.
func readByParseProbe(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := parser.Parse(src); perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}

func errorText(err error) string {
	var se *interpreter.ScriptError
	if errors.As(err, &se) {
		return "Uncaught " + se.Error()
	}
	return err.Error()
}
