// Package noclocknow keeps the loan rules deterministic: code in packages
// named loan must receive the current instant from the caller instead of
// reading the wall clock.
package noclocknow

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports every reference to time.Now inside a package named loan,
// calls and function values alike.
var Analyzer = &analysis.Analyzer{
	Name: "noclocknow",
	Doc:  "prohibits time.Now in the loan package",
	Run:  run,
}

const restrictedPackage = "loan"

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != restrictedPackage {
		return nil, nil
	}

	for _, file := range pass.Files {
		filename := pass.Fset.File(file.Pos()).Name()
		if isGoBuildCacheFile(filename) || strings.HasSuffix(filename, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok || sel.Sel.Name != "Now" {
				return true
			}

			fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
			if ok && fn.Pkg() != nil && fn.Pkg().Path() == "time" {
				pass.Reportf(sel.Pos(), "time.Now must not be used in package loan, take the instant as a parameter")
			}

			return true
		})
	}

	return nil, nil
}

func isGoBuildCacheFile(path string) bool {
	path = filepath.ToSlash(path)
	return strings.Contains(path, "/go-build/")
}
