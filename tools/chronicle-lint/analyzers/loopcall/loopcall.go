// Package loopcall detects per-row repository calls inside loops.
package loopcall

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer detects per-row repository lookups inside loops that should load
// the whole set once.
var Analyzer = &analysis.Analyzer{
	Name:     "loopcall",
	Doc:      "detects per-row repository lookups inside loops that should load the whole set once",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// batchAlternative maps a per-row RelationalDB method to the call that loads
// the same data in one query.
var batchAlternative = map[string]string{
	"FindEventByID":    "ListEvents",
	"FindLocationByID": "ListLocations",
	"FindTimelineByID": "ListTimelines",
	"FindFigureByID":   "ListFigures",
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		body := loopBody(n)
		if body == nil {
			return
		}
		ast.Inspect(body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			if batch, hit := batchAlternative[sel.Sel.Name]; hit {
				pass.Reportf(call.Pos(),
					"per-row lookup: %s inside loop - load the set once with %s",
					sel.Sel.Name, batch)
			}
			return true
		})
	})

	return nil, nil
}

func loopBody(n ast.Node) *ast.BlockStmt {
	switch stmt := n.(type) {
	case *ast.RangeStmt:
		return stmt.Body
	case *ast.ForStmt:
		return stmt.Body
	}
	return nil
}
