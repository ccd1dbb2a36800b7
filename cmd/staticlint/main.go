// Command staticlint runs the analyzers this repository is held to in one
// multichecker binary: a fixed set of go/analysis passes, ineffassign, nilerr,
// the noclocknow check for the loan rules package and whichever staticcheck
// analyzers config.json enables.
//
// config.json is read from the directory of the binary unless STATICLINT_CONFIG
// points somewhere else. Its "Staticcheck" list holds analyzer names such as
// "SA1000"; an entry ending in "*" enables every analyzer with that prefix.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/libloans/cmd/staticlint/noclocknow"
)

const (
	configFileName = "config.json"
	configPathEnv  = "STATICLINT_CONFIG"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type lintConfig struct {
	Staticcheck []string
}

func main() {
	configPath, err := resolveConfigPath()
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	multichecker.Main(append(baseAnalyzers(), enabledStaticcheck(cfg.Staticcheck)...)...)
}

func baseAnalyzers() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		copylock.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,
		ineffassign.Analyzer,
		nilerr.Analyzer,
		noclocknow.Analyzer,
	}
}

func resolveConfigPath() (string, error) {
	if fromEnv := os.Getenv(configPathEnv); fromEnv != "" {
		return fromEnv, nil
	}

	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("in cmd/staticlint/main.go/resolveConfigPath(): error while `os.Executable()` calling: %w", err)
	}

	return filepath.Join(filepath.Dir(executable), configFileName), nil
}

func loadConfig(path string) (lintConfig, error) {
	var cfg lintConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("in cmd/staticlint/main.go/loadConfig(): error while `os.ReadFile()` calling: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("in cmd/staticlint/main.go/loadConfig(): error while `json.Unmarshal()` calling: %w", err)
	}

	return cfg, nil
}

// enabledStaticcheck keeps the staticcheck analyzers matched by names, in staticcheck's order.
func enabledStaticcheck(names []string) []*analysis.Analyzer {
	var enabled []*analysis.Analyzer
	for _, candidate := range staticcheck.Analyzers {
		if matchesAny(candidate.Analyzer.Name, names) {
			enabled = append(enabled, candidate.Analyzer)
		}
	}

	return enabled
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(name, prefix) {
				return true
			}
			continue
		}
		if name == pattern {
			return true
		}
	}

	return false
}
