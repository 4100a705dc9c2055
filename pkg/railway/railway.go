// Package railway is the public entry point for embedding the Railway
// interpreter: parse a source file once, then run it forwards or
// backwards any number of times.
package railway

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kr/pretty"
	"github.com/maruel/natural"

	"github.com/railwaylang/railway/internal/ast"
	raerr "github.com/railwaylang/railway/internal/errors"
	"github.com/railwaylang/railway/internal/interp"
	"github.com/railwaylang/railway/internal/parser"
)

// Program is a parsed Railway source file, ready to run.
type Program struct {
	file     *ast.File
	source   string
	filename string
}

// Load lexes and parses source, returning a Program or an error listing the
// accumulated parse errors, each prefixed with its line:column position.
func Load(source, filename string) (*Program, error) {
	p := parser.New(source)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("parsing %s failed:\n%s", filename, strings.Join(errs, "\n"))
	}
	return &Program{file: file, source: source, filename: filename}, nil
}

// Run executes `main` (spec §6), forwards or backwards, writing `print`
// output to out. Errors are *errors.RailwayError, already carrying source
// context for pretty-printing.
func (prog *Program) Run(backwards bool, out io.Writer, trace bool) error {
	it, err := interp.New(prog.file, out)
	if err != nil {
		return prog.attachSource(err)
	}
	it.SetTrace(trace)
	if err := it.Run(backwards); err != nil {
		return prog.attachSource(err)
	}
	return nil
}

func (prog *Program) attachSource(err error) error {
	if re, ok := err.(*raerr.RailwayError); ok {
		return re.WithSource(prog.source, prog.filename)
	}
	return err
}

// DumpAST renders the parsed tree for --dump-ast: globals in declaration
// order, then functions in natural-sort order by name (so output is
// deterministic regardless of source ordering), each pretty-printed with
// kr/pretty.
func (prog *Program) DumpAST() string {
	var out string
	for _, g := range prog.file.Globals {
		out += fmt.Sprintf("%# v\n", pretty.Formatter(g))
	}

	names := make([]string, len(prog.file.Functions))
	byName := make(map[string]*ast.FunctionDecl, len(prog.file.Functions))
	for i, fn := range prog.file.Functions {
		names[i] = fn.Name
		byName[fn.Name] = fn
	}
	sort.Sort(natural.StringSlice(names))

	for _, name := range names {
		out += fmt.Sprintf("%# v\n", pretty.Formatter(byName[name]))
	}
	return out
}
