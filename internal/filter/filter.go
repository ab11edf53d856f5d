// Package filter selects titles with a CEL boolean expression.
//
// Expressions see each title as the string variable `title` and may use
// the CEL strings extension, e.g. `title.lowerAscii().contains("batman")`
// or `title.endsWith("(1995)")`.
package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

const titleVar = "title"

// Filter is a compiled predicate over a title. It is safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

// newEnv declares the `title` variable alongside the extension libraries.
func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(titleVar, cel.StringType),
		celext.Strings(),
		celext.Math(),
	)
}

// Compile parses and type-checks expr, which must evaluate to a bool and
// read the title. Constant expressions such as `true` are rejected.
func Compile(expr string) (*Filter, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(types.BoolType) {
		return nil, fmt.Errorf("filter %q must return bool, got %s", expr, ast.OutputType())
	}
	checked, err := cel.AstToCheckedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("compilation error: %w", err)
	}
	if !references(checked.GetExpr(), titleVar) {
		return nil, fmt.Errorf("filter %q never references %s", expr, titleVar)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// references reports whether the identifier name appears anywhere in expr.
func references(expr *exprpb.Expr, name string) bool {
	if expr == nil {
		return false
	}
	switch expr.ExprKind.(type) {
	case *exprpb.Expr_IdentExpr:
		return expr.GetIdentExpr().GetName() == name
	case *exprpb.Expr_SelectExpr:
		return references(expr.GetSelectExpr().GetOperand(), name)
	case *exprpb.Expr_CallExpr:
		call := expr.GetCallExpr()
		if references(call.GetTarget(), name) {
			return true
		}
		for _, arg := range call.GetArgs() {
			if references(arg, name) {
				return true
			}
		}
	case *exprpb.Expr_ListExpr:
		for _, elem := range expr.GetListExpr().GetElements() {
			if references(elem, name) {
				return true
			}
		}
	case *exprpb.Expr_StructExpr:
		for _, entry := range expr.GetStructExpr().GetEntries() {
			if references(entry.GetMapKey(), name) || references(entry.GetValue(), name) {
				return true
			}
		}
	case *exprpb.Expr_ComprehensionExpr:
		comp := expr.GetComprehensionExpr()
		for _, e := range []*exprpb.Expr{comp.GetIterRange(), comp.GetAccuInit(), comp.GetLoopCondition(), comp.GetLoopStep(), comp.GetResult()} {
			if references(e, name) {
				return true
			}
		}
	}
	return false
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the filter for one title.
func (f *Filter) Match(title string) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{titleVar: title})
	if err != nil {
		return false, fmt.Errorf("eval error for %q: %w", title, err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %s, not bool", f.expr, out.Type())
	}
	return bool(b), nil
}

// Apply keeps the titles the filter matches, in order. A nil Filter keeps
// everything.
func (f *Filter) Apply(titles []string) ([]string, error) {
	if f == nil {
		return titles, nil
	}
	out := make([]string, 0, len(titles))
	for _, title := range titles {
		ok, err := f.Match(title)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, title)
		}
	}
	return out, nil
}
