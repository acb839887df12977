// Package analyzers provides all custom static analyzers for chronicle-core.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/chronicle-core/tools/chronicle-lint/analyzers/loopcall"
	"github.com/ersonp/chronicle-core/tools/chronicle-lint/analyzers/maplookup"
	"github.com/ersonp/chronicle-core/tools/chronicle-lint/analyzers/nestedloop"
	"github.com/ersonp/chronicle-core/tools/chronicle-lint/analyzers/regexloop"
	"github.com/ersonp/chronicle-core/tools/chronicle-lint/analyzers/stringconcat"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		loopcall.Analyzer,
		maplookup.Analyzer,
		nestedloop.Analyzer,
		regexloop.Analyzer,
		stringconcat.Analyzer,
	}
}
