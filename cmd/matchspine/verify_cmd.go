package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/quarrylabs/matchspine/pkg/audit"
	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// runVerifyCmd implements `matchspine verify`.
//
// Exit codes:
//
//	0 = artifact verified
//	1 = hash mismatch
//	2 = runtime error / malformed artifact
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		artifactPath string
		jsonOutput   bool
	)
	cmd.StringVar(&artifactPath, "artifact", "", "Path to artifact JSON (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output result as JSON to stdout")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if artifactPath == "" {
		_, _ = fmt.Fprintln(stderr, "error: --artifact is required")
		return 2
	}

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: read artifact: %v\n", err)
		return 2
	}
	var artifact contracts.MatchArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		_, _ = fmt.Fprintf(stderr, "error: parse artifact: %v\n", err)
		return 2
	}

	result := audit.Verify(&artifact)

	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			_, _ = fmt.Fprintf(stderr, "error: encode result: %v\n", err)
			return 2
		}
	} else {
		_, _ = fmt.Fprintf(stdout, "%s %s\n", result.Status, result.MatchID)
		if result.Message != "" {
			_, _ = fmt.Fprintf(stdout, "  %s\n", result.Message)
		}
	}

	switch result.Status {
	case audit.StatusVerified:
		return 0
	case audit.StatusHashMismatch:
		return 1
	default:
		return 2
	}
}
