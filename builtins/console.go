package builtins

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/pulse/runtime"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetWriters redirects console output, primarily for tests. Passing nil
// keeps the current writer.
func SetWriters(out, err io.Writer) {
	if out != nil {
		stdout = out
	}
	if err != nil {
		stderr = err
	}
}

func createConsoleObject() *runtime.HostObject {
	console := runtime.NewHostObject("console")

	setMethod(console, "log", consoleLog)
	setMethod(console, "info", consoleLog)
	setMethod(console, "debug", consoleLog)
	setMethod(console, "error", consoleError)
	setMethod(console, "warn", consoleError)

	return console
}

func formatArgs(args []*runtime.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatValue(a)
	}
	return strings.Join(parts, " ")
}

func formatValue(v *runtime.Value) string {
	if v == nil {
		return "undefined"
	}
	switch v.Type {
	case runtime.TypeString:
		return v.Str
	case runtime.TypeArray:
		parts := make([]string, v.Array.Len())
		for i, elem := range v.Array.Elements {
			parts[i] = quotedValue(elem)
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	case runtime.TypeObject:
		keys := v.Object.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + quotedValue(v.Object.Get(k))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return v.ToString()
	}
}

// quotedValue is formatValue except strings keep their quotes, the way
// nested values print inside containers.
func quotedValue(v *runtime.Value) string {
	if v != nil && v.Type == runtime.TypeString {
		return "'" + v.Str + "'"
	}
	return formatValue(v)
}

func consoleLog(args []*runtime.Value) (*runtime.Value, error) {
	fmt.Fprintln(stdout, formatArgs(args))
	return runtime.Undefined, nil
}

func consoleError(args []*runtime.Value) (*runtime.Value, error) {
	fmt.Fprintln(stderr, formatArgs(args))
	return runtime.Undefined, nil
}
