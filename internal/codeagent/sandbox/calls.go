package sandbox

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"
)

// evalCall resolves a call expression to a tool, a builtin, the reserved
// final_answer callable, or an allowlisted package-qualified stdlib
// function, then evaluates its arguments and invokes it.
//
// Tool and builtin calls are keyword-args only (§4.7). Since Go's call
// syntax has no named-argument form, the snippet convention is a single
// map[string]any composite literal: `tool(map[string]any{"a": 1, "b": 2})`.
// A single non-map positional argument is also accepted and keyed "value"
// (used by e.g. `final_answer(42)`), since requiring the map form for the
// single-argument case would be needless ceremony.
func (it *Interpreter) evalCall(call *ast.CallExpr) (any, error) {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return it.evalDirectCall(fn.Name, call.Args)
	case *ast.SelectorExpr:
		pkgIdent, ok := fn.X.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("unsupported call target")
		}
		return it.evalPackageCall(pkgIdent.Name, fn.Sel.Name, call.Args)
	default:
		return nil, fmt.Errorf("unsupported call expression")
	}
}

func (it *Interpreter) evalDirectCall(name string, argExprs []ast.Expr) (any, error) {
	// print is always positional, never kwargs, and writes straight to
	// the log buffer rather than resolving to a Tool/Builtin/final_answer.
	if name == "print" {
		parts := make([]string, len(argExprs))
		for i, a := range argExprs {
			v, err := it.evalExpr(a)
			if err != nil {
				return nil, err
			}
			parts[i] = fmt.Sprintf("%v", v)
		}
		fmt.Fprintln(&it.logs, strings.Join(parts, " "))
		return nil, nil
	}

	args, err := it.evalArgs(argExprs)
	if err != nil {
		return nil, err
	}

	if name == "final_answer" {
		v := positionalOrAnswer(args)
		it.finalAnswerCalled = true
		it.finalAnswerValue = v
		return v, nil
	}

	if fn, ok := it.Tools[name]; ok {
		return fn(args)
	}
	if fn, ok := it.Builtins[name]; ok {
		return fn(args)
	}
	return nil, fmt.Errorf("undefined function %q", name)
}

// evalArgs evaluates a call's argument list into a keyword-args map. A
// single map[string]any argument is unpacked directly as the kwargs map;
// otherwise each positional argument is kept under "argN", and a lone
// argument is also keyed "value" for single-parameter callables.
func (it *Interpreter) evalArgs(argExprs []ast.Expr) (map[string]any, error) {
	if len(argExprs) == 1 {
		v, err := it.evalExpr(argExprs[0])
		if err != nil {
			return nil, err
		}
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
		return map[string]any{"value": v}, nil
	}

	args := map[string]any{}
	for i, a := range argExprs {
		v, err := it.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[fmt.Sprintf("arg%d", i)] = v
	}
	return args, nil
}

func positionalOrAnswer(args map[string]any) any {
	if v, ok := args["answer"]; ok {
		return v
	}
	if v, ok := args["value"]; ok {
		return v
	}
	return args
}

// evalPackageCall handles allowlisted package-qualified stdlib calls
// (e.g. math.Sqrt, strings.ToUpper), gated by the interpreter's
// authorized-imports allowlist.
func (it *Interpreter) evalPackageCall(pkg, fn string, argExprs []ast.Expr) (any, error) {
	if !it.authorized(pkg) {
		return nil, fmt.Errorf("import %q is not authorized", pkg)
	}
	args := make([]any, len(argExprs))
	for i, a := range argExprs {
		v, err := it.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	impl, ok := stdlibFuncs[pkg+"."+fn]
	if !ok {
		return nil, fmt.Errorf("unsupported call %s.%s", pkg, fn)
	}
	return impl(args)
}

// evalSelector handles bare `pkg.Name` references outside a call
// (constants like math.Pi); package-qualified calls are handled in
// evalCall/evalPackageCall directly since they need the allowlist check
// before argument evaluation.
func (it *Interpreter) evalSelector(e *ast.SelectorExpr) (any, error) {
	pkgIdent, ok := e.X.(*ast.Ident)
	if !ok {
		return nil, fmt.Errorf("unsupported selector expression")
	}
	if !it.authorized(pkgIdent.Name) {
		return nil, fmt.Errorf("import %q is not authorized", pkgIdent.Name)
	}
	v, ok := stdlibConsts[pkgIdent.Name+"."+e.Sel.Name]
	if !ok {
		return nil, fmt.Errorf("unsupported reference %s.%s", pkgIdent.Name, e.Sel.Name)
	}
	return v, nil
}

func applyUnary(op token.Token, v any) (any, error) {
	switch op {
	case token.SUB:
		switch n := v.(type) {
		case int64:
			return -n, nil
		case float64:
			return -n, nil
		}
		return nil, fmt.Errorf("unary - requires a number, got %T", v)
	case token.NOT:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("unary ! requires a boolean, got %T", v)
		}
		return !b, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator %s", op)
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func applyBinary(op token.Token, l, r any) (any, error) {
	// String concatenation and equality are handled before numeric
	// coercion since strings never participate in arithmetic promotion.
	if ls, ok := l.(string); ok {
		rs, rok := r.(string)
		switch op {
		case token.ADD:
			if !rok {
				return nil, fmt.Errorf("cannot add string and %T", r)
			}
			return ls + rs, nil
		case token.EQL:
			return rok && ls == rs, nil
		case token.NEQ:
			return !(rok && ls == rs), nil
		}
	}

	if lb, ok := l.(bool); ok {
		rb, rok := r.(bool)
		switch op {
		case token.EQL:
			return rok && lb == rb, nil
		case token.NEQ:
			return !(rok && lb == rb), nil
		}
	}

	li, liok := l.(int64)
	ri, riok := r.(int64)
	if liok && riok {
		switch op {
		case token.ADD:
			return li + ri, nil
		case token.SUB:
			return li - ri, nil
		case token.MUL:
			return li * ri, nil
		case token.QUO:
			if ri == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return li / ri, nil
		case token.REM:
			if ri == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return li % ri, nil
		case token.LSS:
			return li < ri, nil
		case token.LEQ:
			return li <= ri, nil
		case token.GTR:
			return li > ri, nil
		case token.GEQ:
			return li >= ri, nil
		case token.EQL:
			return li == ri, nil
		case token.NEQ:
			return li != ri, nil
		}
	}

	lf, lfok := toFloat(l)
	rf, rfok := toFloat(r)
	if lfok && rfok {
		switch op {
		case token.ADD:
			return lf + rf, nil
		case token.SUB:
			return lf - rf, nil
		case token.MUL:
			return lf * rf, nil
		case token.QUO:
			if rf == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return lf / rf, nil
		case token.LSS:
			return lf < rf, nil
		case token.LEQ:
			return lf <= rf, nil
		case token.GTR:
			return lf > rf, nil
		case token.GEQ:
			return lf >= rf, nil
		case token.EQL:
			return lf == rf, nil
		case token.NEQ:
			return lf != rf, nil
		}
	}

	return nil, fmt.Errorf("unsupported operands for %s: %T, %T", op, l, r)
}
