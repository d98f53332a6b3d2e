// Package query evaluates the selection language: Lisp expressions over a
// structure that produce a selection.
//
//	(intersect (atoms :chain "A") (complement (atoms :element "H")))
//
// Evaluation runs in a fresh zygomys sandbox per call.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/arose/molstar/pkg/loci"
	"github.com/arose/molstar/pkg/structure"
)

// EvalError is a problem in the query source, such as a parse error or a
// bad builtin argument.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates queries. It is safe for concurrent use; only the result
// of the latest evaluation is returned, earlier ones report ErrSuperseded.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source against s.
//
// Return semantics:
//   - On success: the selection, nil, nil. Empty source selects nothing.
//   - On parse/eval failure: EmptyLoci, eval errors, nil
//   - On fatal failure (timeout, panic, superseded): EmptyLoci, nil, error
func (e *Engine) Evaluate(s *structure.Structure, source string) (loci.Loci, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	if s == nil {
		s = structure.Empty()
	}
	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		l, evalErrs, err := evaluate(s, source)
		ch <- evalResult{loci: l, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func evaluate(s *structure.Structure, source string) (loci.Loci, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return loci.EmptyLoci, nil, nil
	}

	// Sandbox mode keeps queries away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return loci.EmptyLoci, parseZygomysError(err), nil
	}
	v, err := env.Run()
	if err != nil {
		return loci.EmptyLoci, parseZygomysError(err), nil
	}
	if v == zygo.SexpNull {
		// only comments or definitions
		return loci.EmptyLoci, nil, nil
	}
	sel, ok := v.(*sexpLoci)
	if !ok {
		return loci.EmptyLoci, []EvalError{{Message: fmt.Sprintf("query must return a selection, got %s", v.SexpString(nil))}}, nil
	}
	return sel.loci, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, keeping the
// line number when the message has one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
