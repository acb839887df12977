// Package maplookup detects a map indexed twice with the same key.
package maplookup

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer detects an if condition and body indexing the same map with the
// same key.
var Analyzer = &analysis.Analyzer{
	Name:     "maplookup",
	Doc:      "detects a map indexed twice with the same key in an if condition and body",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	inspect.Preorder([]ast.Node{(*ast.IfStmt)(nil)}, func(n ast.Node) {
		ifStmt := n.(*ast.IfStmt)

		// An initializer means the value is already bound once.
		if ifStmt.Init != nil {
			return
		}

		condKeys := make(map[string]bool)
		for _, idx := range indexExprs(ifStmt.Cond) {
			condKeys[lookupKey(idx)] = true
		}
		if len(condKeys) == 0 {
			return
		}

		for _, idx := range indexExprs(ifStmt.Body) {
			if key := lookupKey(idx); key != "" && condKeys[key] {
				pass.Reportf(idx.Pos(),
					"map indexed twice with the same key - bind the value in the if initializer")
			}
		}
	})

	return nil, nil
}

// indexExprs collects every index expression under node.
func indexExprs(node ast.Node) []*ast.IndexExpr {
	var out []*ast.IndexExpr
	ast.Inspect(node, func(n ast.Node) bool {
		if idx, ok := n.(*ast.IndexExpr); ok {
			out = append(out, idx)
		}
		return true
	})
	return out
}

// lookupKey renders "target[index]" as a comparable string, or "" when either
// side is an expression form it does not handle.
func lookupKey(idx *ast.IndexExpr) string {
	target := exprString(idx.X)
	index := exprString(idx.Index)
	if target == "" || index == "" {
		return ""
	}
	return target + "[" + index + "]"
}

func exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		if x := exprString(e.X); x != "" {
			return x + "." + e.Sel.Name
		}
	case *ast.IndexExpr:
		return lookupKey(e)
	}
	return ""
}
