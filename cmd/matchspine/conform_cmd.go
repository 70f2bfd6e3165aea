package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/quarrylabs/matchspine/pkg/conform"
	"github.com/quarrylabs/matchspine/pkg/contracts"
	"github.com/quarrylabs/matchspine/pkg/engine"
)

// runConformCmd implements `matchspine conform`.
//
// Exit codes:
//
//	0 = every check passed
//	1 = at least one check failed
//	2 = runtime error
func runConformCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("conform", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		kitPath    string
		jsonOutput bool
		stopOnFail bool
	)
	cmd.StringVar(&kitPath, "kit", "", "Path to bolt-on kit JSON (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output report as JSON to stdout")
	cmd.BoolVar(&stopOnFail, "stop-on-fail", false, "Stop at the first failing check")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if kitPath == "" {
		_, _ = fmt.Fprintln(stderr, "error: --kit is required")
		return 2
	}

	data, err := os.ReadFile(kitPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: read kit: %v\n", err)
		return 2
	}
	var kit contracts.BoltOnKit
	if err := json.Unmarshal(data, &kit); err != nil {
		_, _ = fmt.Fprintf(stderr, "error: parse kit: %v\n", err)
		return 2
	}

	runner := conform.NewRunner(builtinEngines())
	continueOnFail := !stopOnFail
	report := runner.Run(context.Background(), kit, conform.Options{ContinueOnFail: &continueOnFail})

	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			_, _ = fmt.Fprintf(stderr, "error: encode report: %v\n", err)
			return 2
		}
	} else {
		printReport(stdout, report)
	}

	switch report.Status {
	case conform.StatusPass:
		return 0
	case conform.StatusFail:
		return 1
	default:
		return 2
	}
}

func printReport(w io.Writer, report *conform.Report) {
	_, _ = fmt.Fprintf(w, "conformance %s: %s@%s\n", report.Status, report.EngineCode, report.EngineVersion)
	for _, check := range report.Checks {
		mark := "ok  "
		if !check.OK {
			mark = "FAIL"
		}
		if check.Message != "" {
			_, _ = fmt.Fprintf(w, "  %s %s — %s\n", mark, check.Name, check.Message)
		} else {
			_, _ = fmt.Fprintf(w, "  %s %s\n", mark, check.Name)
		}
	}
}

// builtinEngines returns the registry of engines compiled into this
// binary. Third-party engines register here at build time.
func builtinEngines() *engine.Registry {
	registry := engine.NewRegistry()
	coinduel := engine.NewCoinDuel()
	_ = registry.Register("coinduel", coinduel.Manifest(), func() (engine.Adapter, error) {
		return engine.NewCoinDuel(), nil
	})
	return registry
}
