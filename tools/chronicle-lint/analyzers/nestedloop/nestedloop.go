// Package nestedloop detects an inner range repeating the outer range's
// collection.
package nestedloop

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer detects nested ranges over the same collection.
var Analyzer = &analysis.Analyzer{
	Name:     "nestedloop",
	Doc:      "detects nested ranges over the same collection",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	inspect.Preorder([]ast.Node{(*ast.RangeStmt)(nil)}, func(n ast.Node) {
		outer := n.(*ast.RangeStmt)
		target := rangeTarget(outer.X)
		if target == "" {
			return
		}

		ast.Inspect(outer.Body, func(n ast.Node) bool {
			inner, ok := n.(*ast.RangeStmt)
			if !ok {
				return true
			}
			if rangeTarget(inner.X) == target {
				pass.Reportf(inner.Pos(),
					"quadratic scan: inner range repeats outer range over %q - index it in a map first",
					target)
			}
			return true
		})
	})

	return nil, nil
}

// rangeTarget names the ranged-over expression when it is a plain identifier
// or a one-level selector.
func rangeTarget(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		if ident, ok := e.X.(*ast.Ident); ok {
			return ident.Name + "." + e.Sel.Name
		}
	}
	return ""
}
