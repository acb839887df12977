// chronicle-lint is a custom static analyzer for chronicle-core performance patterns.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/chronicle-core/tools/chronicle-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
