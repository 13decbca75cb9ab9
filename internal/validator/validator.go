// Package validator implements the static admission check spec.md §4.2
// describes: walk a parsed program's AST and reject anything that reaches
// for a forbidden import, a forbidden builtin, or a forbidden attribute,
// before a single line of it is ever handed to a child process.
package validator

import (
	"fmt"

	"github.com/sakif/pyrunner/internal/policy"
	"github.com/sakif/pyrunner/internal/pyast"
)

// Violation describes one rule match found while walking the tree.
type Violation struct {
	Rule    string // "forbidden_import" | "forbidden_builtin" | "forbidden_attribute"
	Detail  string
	Line    int
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (line %d)", v.Rule, v.Detail, v.Line)
}

// Result is the outcome of validating one program. Empty/whitespace-only
// source is Valid with no violations, per spec.md §4.2's admission table —
// rejecting it is a request-bounds concern, not a validator concern.
type Result struct {
	Valid      bool
	Violations []Violation
}

// Validator walks a pyast.Module against a policy.Catalog. It holds no
// mutable state between calls and is safe for concurrent reuse.
type Validator struct {
	catalog *policy.Catalog
}

func New(catalog *policy.Catalog) *Validator {
	if catalog == nil {
		catalog = policy.Default()
	}
	return &Validator{catalog: catalog}
}

// Check parses source and validates it in one step. A syntax error is
// itself a rejection, distinct from a policy violation, matching
// original_source's SecurityValidator which folds ast.parse failures into
// its own "invalid" result.
func (v *Validator) Check(source string) (Result, error) {
	mod, err := pyast.Parse(source)
	if err != nil {
		return Result{}, err
	}
	return v.CheckModule(mod), nil
}

// CheckModule walks an already-parsed module; Check is pyast.Parse followed
// by CheckModule.
func (v *Validator) CheckModule(mod *pyast.Module) Result {
	w := &walker{catalog: v.catalog}
	for _, stmt := range mod.Body {
		w.visitStmt(stmt)
	}
	return Result{Valid: len(w.violations) == 0, Violations: w.violations}
}

type walker struct {
	catalog    *policy.Catalog
	violations []Violation
}

func (w *walker) report(rule, detail string, pos pyast.Position) {
	w.violations = append(w.violations, Violation{Rule: rule, Detail: detail, Line: pos.Line})
}

// isUnderscoreName admits top-level package names starting with "_",
// treated as host-internal synthetic imports per spec.md §4.2 — a policy
// choice carried from original_source rather than tightened.
func isUnderscoreName(name string) bool {
	return len(name) > 0 && name[0] == '_'
}

func (w *walker) topLevelPackage(dotted string) string {
	for i, r := range dotted {
		if r == '.' {
			return dotted[:i]
		}
	}
	return dotted
}

func (w *walker) visitStmt(stmt pyast.Stmt) {
	switch s := stmt.(type) {
	case *pyast.ImportStmt:
		for _, alias := range s.Names {
			top := w.topLevelPackage(alias.Name)
			if w.catalog.IsForbiddenImport(top) {
				w.report("forbidden_import", fmt.Sprintf("import of %q is not allowed", alias.Name), s.Pos())
			} else if !w.catalog.IsPermittedImport(top) && !isUnderscoreName(top) {
				w.report("forbidden_import", fmt.Sprintf("import of %q is not permitted", alias.Name), s.Pos())
			}
		}
	case *pyast.ImportFromStmt:
		top := w.topLevelPackage(s.Module)
		if s.Level == 0 {
			if w.catalog.IsForbiddenImport(top) {
				w.report("forbidden_import", fmt.Sprintf("import from %q is not allowed", s.Module), s.Pos())
			} else if !w.catalog.IsPermittedImport(top) && !isUnderscoreName(top) {
				w.report("forbidden_import", fmt.Sprintf("import from %q is not permitted", s.Module), s.Pos())
			}
		}
	case *pyast.ExprStmt:
		w.visitExpr(s.Value)
	case *pyast.Assign:
		for _, t := range s.Targets {
			w.visitExpr(t)
		}
		w.visitExpr(s.Value)
	case *pyast.AugAssign:
		w.visitExpr(s.Target)
		w.visitExpr(s.Value)
	case *pyast.AnnAssign:
		w.visitExpr(s.Target)
		w.visitExpr(s.Annotation)
		if s.Value != nil {
			w.visitExpr(s.Value)
		}
	case *pyast.IfStmt:
		w.visitExpr(s.Test)
		w.visitBody(s.Body)
		w.visitBody(s.Orelse)
	case *pyast.WhileStmt:
		w.visitExpr(s.Test)
		w.visitBody(s.Body)
		w.visitBody(s.Orelse)
	case *pyast.ForStmt:
		w.visitExpr(s.Target)
		w.visitExpr(s.Iter)
		w.visitBody(s.Body)
		w.visitBody(s.Orelse)
	case *pyast.FunctionDef:
		for _, d := range s.Decorators {
			w.visitExpr(d)
		}
		for _, p := range s.Args {
			if p.Default != nil {
				w.visitExpr(p.Default)
			}
		}
		w.visitBody(s.Body)
	case *pyast.ClassDef:
		for _, d := range s.Decorators {
			w.visitExpr(d)
		}
		for _, b := range s.Bases {
			w.visitExpr(b)
		}
		for _, kw := range s.Keywords {
			w.visitExpr(kw.Value)
		}
		w.visitBody(s.Body)
	case *pyast.ReturnStmt:
		if s.Value != nil {
			w.visitExpr(s.Value)
		}
	case *pyast.RaiseStmt:
		if s.Exc != nil {
			w.visitExpr(s.Exc)
		}
		if s.Cause != nil {
			w.visitExpr(s.Cause)
		}
	case *pyast.DeleteStmt:
		for _, t := range s.Targets {
			w.visitExpr(t)
		}
	case *pyast.AssertStmt:
		w.visitExpr(s.Test)
		if s.Msg != nil {
			w.visitExpr(s.Msg)
		}
	case *pyast.TryStmt:
		w.visitBody(s.Body)
		for _, h := range s.Handlers {
			if h.Type != nil {
				w.visitExpr(h.Type)
			}
			w.visitBody(h.Body)
		}
		w.visitBody(s.Orelse)
		w.visitBody(s.Finally)
	case *pyast.WithStmt:
		for _, item := range s.Items {
			w.visitExpr(item.Context)
			if item.Vars != nil {
				w.visitExpr(item.Vars)
			}
		}
		w.visitBody(s.Body)
	case *pyast.PassStmt, *pyast.BreakStmt, *pyast.ContinueStmt,
		*pyast.GlobalStmt, *pyast.NonlocalStmt:
		// no expressions to walk
	}
}

func (w *walker) visitBody(body []pyast.Stmt) {
	for _, s := range body {
		w.visitStmt(s)
	}
}

func (w *walker) visitExpr(expr pyast.Expr) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *pyast.CallExpr:
		if name, ok := e.Func.(*pyast.NameExpr); ok && w.catalog.IsForbiddenBuiltin(name.Id) {
			w.report("forbidden_builtin", fmt.Sprintf("call to %q is not allowed", name.Id), e.Pos())
		}
		w.visitExpr(e.Func)
		for _, a := range e.Args {
			w.visitExpr(a)
		}
		for _, kw := range e.Keywords {
			w.visitExpr(kw.Value)
		}
	case *pyast.AttributeExpr:
		if w.catalog.IsForbiddenAttribute(e.Attr) {
			w.report("forbidden_attribute", fmt.Sprintf("access to %q is not allowed", e.Attr), e.Pos())
		}
		w.visitExpr(e.Value)
	case *pyast.SubscriptExpr:
		w.visitExpr(e.Value)
		w.visitExpr(e.Slice)
	case *pyast.SliceExpr:
		w.visitExpr(e.Lower)
		w.visitExpr(e.Upper)
		w.visitExpr(e.Step)
	case *pyast.BinOpExpr:
		w.visitExpr(e.Left)
		w.visitExpr(e.Right)
	case *pyast.UnaryOpExpr:
		w.visitExpr(e.Operand)
	case *pyast.BoolOpExpr:
		for _, v := range e.Values {
			w.visitExpr(v)
		}
	case *pyast.CompareExpr:
		w.visitExpr(e.Left)
		for _, c := range e.Comparators {
			w.visitExpr(c)
		}
	case *pyast.IfExp:
		w.visitExpr(e.Test)
		w.visitExpr(e.Body)
		w.visitExpr(e.Orelse)
	case *pyast.LambdaExpr:
		for _, p := range e.Args {
			if p.Default != nil {
				w.visitExpr(p.Default)
			}
		}
		w.visitExpr(e.Body)
	case *pyast.ListExpr:
		for _, el := range e.Elts {
			w.visitExpr(el)
		}
	case *pyast.TupleExpr:
		for _, el := range e.Elts {
			w.visitExpr(el)
		}
	case *pyast.SetExpr:
		for _, el := range e.Elts {
			w.visitExpr(el)
		}
	case *pyast.DictExpr:
		for i, k := range e.Keys {
			if k != nil {
				w.visitExpr(k)
			}
			w.visitExpr(e.Values[i])
		}
	case *pyast.ListComp:
		w.visitExpr(e.Elt)
		w.visitGenerators(e.Generators)
	case *pyast.SetComp:
		w.visitExpr(e.Elt)
		w.visitGenerators(e.Generators)
	case *pyast.GeneratorExp:
		w.visitExpr(e.Elt)
		w.visitGenerators(e.Generators)
	case *pyast.DictComp:
		w.visitExpr(e.Key)
		w.visitExpr(e.Value)
		w.visitGenerators(e.Generators)
	case *pyast.NamedExpr:
		w.visitExpr(e.Target)
		w.visitExpr(e.Value)
	case *pyast.StarredExpr:
		w.visitExpr(e.Value)
	case *pyast.DoubleStarredExpr:
		w.visitExpr(e.Value)
	case *pyast.JoinedStr:
		for _, v := range e.Values {
			w.visitExpr(v)
		}
	case *pyast.FormattedValue:
		w.visitExpr(e.Value)
	case *pyast.NameExpr, *pyast.ConstExpr, *pyast.NumExpr, *pyast.StrExpr:
		// leaves, nothing to walk
	}
}

func (w *walker) visitGenerators(gens []pyast.CompFor) {
	for _, g := range gens {
		w.visitExpr(g.Target)
		w.visitExpr(g.Iter)
		for _, cond := range g.Ifs {
			w.visitExpr(cond)
		}
	}
}
