// Package stringconcat detects string += accumulation inside loops.
package stringconcat

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer detects string += accumulation inside loops.
var Analyzer = &analysis.Analyzer{
	Name:     "stringconcat",
	Doc:      "detects string += accumulation inside loops",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		var body *ast.BlockStmt
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			body = stmt.Body
		case *ast.ForStmt:
			body = stmt.Body
		}
		if body == nil {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			assign, ok := n.(*ast.AssignStmt)
			if !ok {
				return true
			}
			if isStringAppend(pass, assign) {
				pass.Reportf(assign.Pos(),
					"string += in a loop grows quadratically - use strings.Builder")
			}
			return true
		})
	})

	return nil, nil
}

// isStringAppend reports whether assign is a += onto a string-typed value.
func isStringAppend(pass *analysis.Pass, assign *ast.AssignStmt) bool {
	if assign.Tok != token.ADD_ASSIGN || len(assign.Lhs) != 1 {
		return false
	}
	typ := pass.TypesInfo.TypeOf(assign.Lhs[0])
	if typ == nil {
		return false
	}
	basic, ok := typ.Underlying().(*types.Basic)
	return ok && basic.Kind() == types.String
}
