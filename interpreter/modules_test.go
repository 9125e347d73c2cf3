package interpreter

import (
	"fmt"
	"testing"

	"github.com/example/pulse/runtime"
)

// memLoader serves module sources from a map, evaluating each path at most
// once the way the file loader does.
type memLoader struct {
	interp  *Interpreter
	sources map[string]string
	cache   map[string]map[string]*runtime.Value
	loads   int
}

func (l *memLoader) Resolve(specifier, fromPath string) (string, error) {
	if specifier == "" {
		return "", fmt.Errorf("empty module specifier")
	}
	return specifier, nil
}

func (l *memLoader) Load(path string) (map[string]*runtime.Value, error) {
	if exports, ok := l.cache[path]; ok {
		return exports, nil
	}
	src, ok := l.sources[path]
	if !ok {
		return nil, fmt.Errorf("cannot load module %s", path)
	}
	l.loads++
	exports, err := l.interp.EvalModule(src, path)
	if err != nil {
		return nil, err
	}
	l.cache[path] = exports
	return exports, nil
}

func moduleInterp(sources map[string]string) (*Interpreter, *memLoader) {
	loader := &memLoader{
		sources: sources,
		cache:   make(map[string]map[string]*runtime.Value),
	}
	interp := New(WithLoader(loader))
	loader.interp = interp
	return interp, loader
}

func evalModules(t *testing.T, sources map[string]string, main string) *runtime.Value {
	t.Helper()
	interp, _ := moduleInterp(sources)
	val, err := interp.Eval(main)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	return val
}

func TestNamedImport(t *testing.T) {
	val := evalModules(t, map[string]string{
		"lib": `export let answer = 42;`,
	}, `import { answer } from "lib"; answer`)
	if val.Number != 42 {
		t.Fatalf("expected 42, got %v", val)
	}
}

func TestImportedFunction(t *testing.T) {
	val := evalModules(t, map[string]string{
		"mathx": `export function double(n) { return n * 2; }`,
	}, `import { double } from "mathx"; double(21)`)
	if val.Number != 42 {
		t.Fatalf("expected 42, got %v", val)
	}
}

func TestDefaultImport(t *testing.T) {
	val := evalModules(t, map[string]string{
		"greet": `export default name => "hi " + name;`,
	}, `import greet from "greet"; greet("ann")`)
	if val.Str != "hi ann" {
		t.Fatalf("expected greeting, got %v", val)
	}
}

func TestAliasedImport(t *testing.T) {
	val := evalModules(t, map[string]string{
		"lib": `export let long = 1;`,
	}, `import { long as l } from "lib"; l`)
	if val.Number != 1 {
		t.Fatalf("expected 1, got %v", val)
	}
}

func TestMixedImport(t *testing.T) {
	val := evalModules(t, map[string]string{
		"lib": `
export default 10;
export let extra = 5;`,
	}, `import base, { extra } from "lib"; base + extra`)
	if val.Number != 15 {
		t.Fatalf("expected 15, got %v", val)
	}
}

func TestBareNamedExport(t *testing.T) {
	val := evalModules(t, map[string]string{
		"lib": `
let internal = 7;
export { internal as visible };`,
	}, `import { visible } from "lib"; visible`)
	if val.Number != 7 {
		t.Fatalf("expected 7, got %v", val)
	}
}

func TestReExport(t *testing.T) {
	val := evalModules(t, map[string]string{
		"base":   `export let value = 3;`,
		"facade": `export { value as v } from "base";`,
	}, `import { v } from "facade"; v`)
	if val.Number != 3 {
		t.Fatalf("expected 3, got %v", val)
	}
}

func TestModuleEvaluatedOnce(t *testing.T) {
	sources := map[string]string{
		"counted": `
export let a = 1;
export let b = 2;`,
	}
	interp, loader := moduleInterp(sources)
	_, err := interp.Eval(`
import { a } from "counted";
import { b } from "counted";
a + b`)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if loader.loads != 1 {
		t.Fatalf("expected 1 load, got %d", loader.loads)
	}
}

func TestModuleStateIsShared(t *testing.T) {
	// Both import sites see one instance of the module's state.
	val := evalModules(t, map[string]string{
		"store": `
let n = 0;
export function bump() { n = n + 1; return n; }
export function read() { return n; }`,
	}, `
import { bump } from "store";
import { read } from "store";
bump();
bump();
read()`)
	if val.Number != 2 {
		t.Fatalf("expected 2, got %v", val)
	}
}

func TestModuleLocalsStayPrivate(t *testing.T) {
	interp, _ := moduleInterp(map[string]string{
		"lib": `
let secret = 1;
export let open = 2;`,
	})
	if _, err := interp.Eval(`import { open } from "lib"; secret`); err == nil {
		t.Fatal("expected ReferenceError for module-local name")
	}
}

func TestMissingExport(t *testing.T) {
	interp, _ := moduleInterp(map[string]string{
		"lib": `export let a = 1;`,
	})
	_, err := interp.Eval(`import { nope } from "lib";`)
	if err == nil {
		t.Fatal("expected error for missing export")
	}
}

func TestMissingDefaultExport(t *testing.T) {
	interp, _ := moduleInterp(map[string]string{
		"lib": `export let a = 1;`,
	})
	_, err := interp.Eval(`import lib from "lib";`)
	if err == nil {
		t.Fatal("expected error for missing default export")
	}
}

func TestUnknownModule(t *testing.T) {
	interp, _ := moduleInterp(map[string]string{})
	_, err := interp.Eval(`import { x } from "ghost";`)
	if err == nil {
		t.Fatal("expected error for unknown module")
	}
}

func TestNoLoaderConfigured(t *testing.T) {
	interp := New()
	_, err := interp.Eval(`import { x } from "lib";`)
	if err == nil {
		t.Fatal("expected error without a loader")
	}
}

func TestModuleRuntimeErrorSurfaces(t *testing.T) {
	interp, _ := moduleInterp(map[string]string{
		"broken": `missing();`,
	})
	if _, err := interp.Eval(`import { x } from "broken";`); err == nil {
		t.Fatal("expected module evaluation error")
	}
}

func TestTransitiveImports(t *testing.T) {
	val := evalModules(t, map[string]string{
		"a": `export let base = 1;`,
		"b": `
import { base } from "a";
export let derived = base + 1;`,
	}, `import { derived } from "b"; derived`)
	if val.Number != 2 {
		t.Fatalf("expected 2, got %v", val)
	}
}
