package sandbox

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
)

// execStmt evaluates one statement, returning the value of a bare
// expression statement (used to seed the "last output" convention) or nil
// for statements with no intrinsic value.
func (it *Interpreter) execStmt(stmt ast.Stmt) (any, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		return it.evalExpr(s.X)

	case *ast.AssignStmt:
		return nil, it.execAssign(s)

	case *ast.IfStmt:
		return it.execIf(s)

	case *ast.ForStmt:
		return nil, it.execFor(s)

	case *ast.RangeStmt:
		return nil, it.execRange(s)

	case *ast.ReturnStmt:
		// A bare "return expr" inside a snippet is treated the same as a
		// final expression statement: its value becomes the step output.
		if len(s.Results) == 1 {
			return it.evalExpr(s.Results[0])
		}
		return nil, nil

	case *ast.DeclStmt:
		return nil, it.execDecl(s)

	case *ast.BlockStmt:
		var last any
		for _, inner := range s.List {
			v, err := it.execStmt(inner)
			if err != nil || it.finalAnswerCalled {
				return v, err
			}
			last = v
		}
		return last, nil

	case *ast.IncDecStmt:
		return nil, it.execIncDec(s)

	default:
		return nil, fmt.Errorf("unsupported statement: %T", stmt)
	}
}

func (it *Interpreter) execDecl(s *ast.DeclStmt) error {
	gd, ok := s.Decl.(*ast.GenDecl)
	if !ok || gd.Tok != token.VAR {
		return fmt.Errorf("unsupported declaration")
	}
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for i, name := range vs.Names {
			var v any
			if i < len(vs.Values) {
				val, err := it.evalExpr(vs.Values[i])
				if err != nil {
					return err
				}
				v = val
			}
			it.locals[name.Name] = v
		}
	}
	return nil
}

func (it *Interpreter) execAssign(s *ast.AssignStmt) error {
	if len(s.Lhs) != len(s.Rhs) && s.Tok != token.DEFINE {
		return fmt.Errorf("unsupported multi-assignment shape")
	}
	values := make([]any, len(s.Rhs))
	for i, rhs := range s.Rhs {
		v, err := it.evalExpr(rhs)
		if err != nil {
			return err
		}
		values[i] = v
	}
	for i, lhs := range s.Lhs {
		ident, ok := lhs.(*ast.Ident)
		if !ok {
			return fmt.Errorf("unsupported assignment target")
		}
		if ident.Name == "_" {
			continue
		}
		switch s.Tok {
		case token.DEFINE, token.ASSIGN:
			it.locals[ident.Name] = values[i]
		case token.ADD_ASSIGN:
			cur, _ := it.locals[ident.Name]
			sum, err := applyBinary(token.ADD, cur, values[i])
			if err != nil {
				return err
			}
			it.locals[ident.Name] = sum
		default:
			return fmt.Errorf("unsupported assignment operator %s", s.Tok)
		}
	}
	return nil
}

func (it *Interpreter) execIncDec(s *ast.IncDecStmt) error {
	ident, ok := s.X.(*ast.Ident)
	if !ok {
		return fmt.Errorf("unsupported increment target")
	}
	cur := it.locals[ident.Name]
	op := token.ADD
	if s.Tok == token.DEC {
		op = token.SUB
	}
	v, err := applyBinary(op, cur, int64(1))
	if err != nil {
		return err
	}
	it.locals[ident.Name] = v
	return nil
}

func (it *Interpreter) execIf(s *ast.IfStmt) (any, error) {
	cond, err := it.evalExpr(s.Cond)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(bool)
	if !ok {
		return nil, fmt.Errorf("if condition must be boolean, got %T", cond)
	}
	if b {
		return it.execStmt(s.Body)
	}
	if s.Else != nil {
		return it.execStmt(s.Else)
	}
	return nil, nil
}

const maxLoopIterations = 100_000

func (it *Interpreter) execFor(s *ast.ForStmt) error {
	if s.Init != nil {
		if err := it.execAssign(s.Init.(*ast.AssignStmt)); err != nil {
			return err
		}
	}
	for i := 0; ; i++ {
		if i > maxLoopIterations {
			return fmt.Errorf("loop exceeded %d iterations", maxLoopIterations)
		}
		if s.Cond != nil {
			cond, err := it.evalExpr(s.Cond)
			if err != nil {
				return err
			}
			b, ok := cond.(bool)
			if !ok {
				return fmt.Errorf("for condition must be boolean, got %T", cond)
			}
			if !b {
				return nil
			}
		}
		if _, err := it.execStmt(s.Body); err != nil {
			return err
		}
		if it.finalAnswerCalled {
			return nil
		}
		if s.Post != nil {
			if _, err := it.execStmt(s.Post); err != nil {
				return err
			}
		}
		if s.Cond == nil && s.Init == nil && s.Post == nil {
			return fmt.Errorf("infinite loop with no condition is not permitted")
		}
	}
}

func (it *Interpreter) execRange(s *ast.RangeStmt) error {
	coll, err := it.evalExpr(s.X)
	if err != nil {
		return err
	}

	assign := func(idx int, val any) error {
		if s.Key != nil {
			if ident, ok := s.Key.(*ast.Ident); ok && ident.Name != "_" {
				it.locals[ident.Name] = idx
			}
		}
		if s.Value != nil {
			if ident, ok := s.Value.(*ast.Ident); ok && ident.Name != "_" {
				it.locals[ident.Name] = val
			}
		}
		return nil
	}

	switch c := coll.(type) {
	case []any:
		for i, v := range c {
			if err := assign(i, v); err != nil {
				return err
			}
			if _, err := it.execStmt(s.Body); err != nil {
				return err
			}
			if it.finalAnswerCalled {
				return nil
			}
		}
	default:
		return fmt.Errorf("range over unsupported type %T", coll)
	}
	return nil
}

func (it *Interpreter) evalExpr(expr ast.Expr) (any, error) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return literalValue(e)

	case *ast.Ident:
		return it.resolveIdent(e.Name)

	case *ast.ParenExpr:
		return it.evalExpr(e.X)

	case *ast.BinaryExpr:
		left, err := it.evalExpr(e.X)
		if err != nil {
			return nil, err
		}
		if e.Op == token.LAND {
			lb, _ := left.(bool)
			if !lb {
				return false, nil
			}
			right, err := it.evalExpr(e.Y)
			return right, err
		}
		if e.Op == token.LOR {
			lb, _ := left.(bool)
			if lb {
				return true, nil
			}
			right, err := it.evalExpr(e.Y)
			return right, err
		}
		right, err := it.evalExpr(e.Y)
		if err != nil {
			return nil, err
		}
		return applyBinary(e.Op, left, right)

	case *ast.UnaryExpr:
		v, err := it.evalExpr(e.X)
		if err != nil {
			return nil, err
		}
		return applyUnary(e.Op, v)

	case *ast.CallExpr:
		return it.evalCall(e)

	case *ast.CompositeLit:
		return it.evalComposite(e)

	case *ast.SelectorExpr:
		return it.evalSelector(e)

	case *ast.IndexExpr:
		return it.evalIndex(e)

	default:
		return nil, fmt.Errorf("unsupported expression: %T", expr)
	}
}

func (it *Interpreter) resolveIdent(name string) (any, error) {
	switch name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "nil":
		return nil, nil
	}
	if v, ok := it.locals[name]; ok {
		return v, nil
	}
	if v, ok := it.State[name]; ok {
		return v, nil
	}
	if _, ok := it.Tools[name]; ok {
		return name, nil // resolved at call time
	}
	return nil, fmt.Errorf("undefined identifier %q", name)
}

func literalValue(lit *ast.BasicLit) (any, error) {
	switch lit.Kind {
	case token.INT:
		n, err := strconv.ParseInt(lit.Value, 0, 64)
		return n, err
	case token.FLOAT:
		f, err := strconv.ParseFloat(lit.Value, 64)
		return f, err
	case token.STRING:
		s, err := strconv.Unquote(lit.Value)
		return s, err
	case token.CHAR:
		r, _, _, err := strconv.UnquoteChar(lit.Value[1:len(lit.Value)-1], '\'')
		return r, err
	default:
		return nil, fmt.Errorf("unsupported literal kind %s", lit.Kind)
	}
}

func (it *Interpreter) evalComposite(e *ast.CompositeLit) (any, error) {
	if _, isMap := e.Type.(*ast.MapType); isMap {
		out := make(map[string]any, len(e.Elts))
		for _, elt := range e.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				return nil, fmt.Errorf("map literal elements must be key:value pairs")
			}
			k, err := it.evalExpr(kv.Key)
			if err != nil {
				return nil, err
			}
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("map keys must be strings")
			}
			v, err := it.evalExpr(kv.Value)
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	}

	out := make([]any, 0, len(e.Elts))
	for _, elt := range e.Elts {
		v, err := it.evalExpr(elt)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (it *Interpreter) evalIndex(e *ast.IndexExpr) (any, error) {
	coll, err := it.evalExpr(e.X)
	if err != nil {
		return nil, err
	}
	idx, err := it.evalExpr(e.Index)
	if err != nil {
		return nil, err
	}
	switch c := coll.(type) {
	case []any:
		i, ok := toInt(idx)
		if !ok || i < 0 || int(i) >= len(c) {
			return nil, fmt.Errorf("index out of range")
		}
		return c[i], nil
	case map[string]any:
		k, _ := idx.(string)
		return c[k], nil
	default:
		return nil, fmt.Errorf("cannot index %T", coll)
	}
}
