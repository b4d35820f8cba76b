// Package sandbox implements the code agent's restricted evaluator (§4.7):
// a tree-walking interpreter over a bounded subset of Go expression and
// statement syntax, built on the standard library's own go/parser,
// go/token, and go/ast — the one component of this runtime grounded on
// the standard library rather than a third-party dependency, because no
// embeddable scripting-language package appears anywhere in the retrieved
// example corpus (see DESIGN.md). It is a denylist-by-convention
// restricted evaluator, not a security boundary: it does not attempt to
// defend against adversarial code, only to keep the model's generated
// snippets inside a small, auditable surface (arithmetic, control flow,
// and calls to the tools exposed as locals).
package sandbox

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
)

// CallResult is the result of evaluating one code snippet (§4.7's
// executor contract): call(code_string) → {output, logs, is_final_answer}.
type CallResult struct {
	Output        any
	Logs          string
	IsFinalAnswer bool
}

// Callable is a Go function value a snippet may invoke: a tool, a
// builtin, or final_answer. Named arguments only (keyword-args), per
// §4.7's "each tool as a callable keyed by its name (keyword-args only)".
type Callable func(args map[string]any) (any, error)

// Interpreter holds one execution's bound locals, tools, and the set of
// package-qualified calls it is allowed to make (authorized imports).
type Interpreter struct {
	// Tools and Builtins are both keyword-argument callables keyed by
	// identifier name; a call to final_answer is intercepted by name
	// before either map is consulted, because it records the value and
	// ends evaluation.
	Tools       map[string]Callable
	Builtins    map[string]Callable
	State       map[string]any // whitelisted state variables exposed as locals
	AuthorizedImports []string // base allowlist + agent-declared extras

	MaxPrintOutputLength int // truncate stdout/logs beyond this many runes; 0 = unlimited

	finalAnswerCalled bool
	finalAnswerValue  any
	logs              bytes.Buffer
	locals            map[string]any
}

// DefaultAuthorizedImports is the base package allowlist every
// interpreter carries regardless of agent-declared extras.
var DefaultAuthorizedImports = []string{"math", "strings", "fmt", "strconv", "time", "sort"}

func (it *Interpreter) authorized(pkg string) bool {
	for _, p := range it.AuthorizedImports {
		if p == pkg {
			return true
		}
	}
	for _, p := range DefaultAuthorizedImports {
		if p == pkg {
			return true
		}
	}
	return false
}

// Run parses code as a sequence of Go statements and evaluates them in
// order. The "output" of the run is whichever came first: the value
// passed to final_answer(), or the value of the last bare expression
// statement.
func (it *Interpreter) Run(code string) CallResult {
	it.locals = map[string]any{}
	it.finalAnswerCalled = false
	it.finalAnswerValue = nil
	it.logs.Reset()

	stmts, err := parseStatements(code)
	if err != nil {
		return CallResult{Output: nil, IsFinalAnswer: false, Logs: it.formatTrace(err)}
	}

	var last any
	for _, stmt := range stmts {
		v, err := it.execStmt(stmt)
		if err != nil {
			return CallResult{Output: nil, IsFinalAnswer: false, Logs: it.formatTrace(err)}
		}
		if it.finalAnswerCalled {
			return CallResult{Output: it.finalAnswerValue, IsFinalAnswer: true, Logs: it.truncatedLogs()}
		}
		last = v
	}
	return CallResult{Output: last, IsFinalAnswer: false, Logs: it.truncatedLogs()}
}

func (it *Interpreter) formatTrace(err error) string {
	return "Traceback:\n" + err.Error()
}

func (it *Interpreter) truncatedLogs() string {
	s := it.logs.String()
	if it.MaxPrintOutputLength <= 0 || len([]rune(s)) <= it.MaxPrintOutputLength {
		return s
	}
	r := []rune(s)
	return string(r[:it.MaxPrintOutputLength]) + "... [truncated]"
}

// ParseOnly reports whether code parses as a valid statement list without
// executing it, used by callers deciding whether unfenced model output is
// plausibly a bare snippet (§4.7's "raw content is not a syntactically
// valid snippet" fallback check).
func ParseOnly(code string) ([]ast.Stmt, error) {
	return parseStatements(code)
}

// parseStatements wraps code in a synthetic function body so go/parser
// can parse an arbitrary statement list, then returns the parsed
// statements.
func parseStatements(code string) ([]ast.Stmt, error) {
	src := "package p\nfunc _() {\n" + code + "\n}\n"
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", src, 0)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}
	fn := f.Decls[0].(*ast.FuncDecl)
	return fn.Body.List, nil
}
