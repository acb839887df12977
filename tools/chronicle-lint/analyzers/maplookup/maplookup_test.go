package maplookup_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/ersonp/chronicle-core/tools/chronicle-lint/analyzers/maplookup"
)

func TestAnalyzer(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, maplookup.Analyzer, "a")
}
