// Package audit provides independent recomputation of artifact determinism
// hashes. Anyone holding an artifact can rebuild its determinism bundle,
// recompute the digest, and challenge the stored value — no engine, server,
// or network dependency.
package audit

import (
	"fmt"

	"github.com/quarrylabs/matchspine/pkg/canonicalize"
	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// Status is the outcome of a verification.
type Status string

const (
	// StatusVerified means the recomputed hash matches the stored value.
	StatusVerified Status = "VERIFIED"
	// StatusHashMismatch means the recomputed hash differs: tampering or
	// non-determinism.
	StatusHashMismatch Status = "HASH_MISMATCH"
	// StatusError means recomputation itself failed, e.g. a malformed
	// artifact.
	StatusError Status = "ERROR"
	// StatusReplayMismatch is reserved for verifiers that also re-run the
	// engine and compare outcomes.
	StatusReplayMismatch Status = "REPLAY_MISMATCH"
	// StatusSourceNotFound is reserved for verifiers that fetch artifacts
	// from a store by reference.
	StatusSourceNotFound Status = "SOURCE_NOT_FOUND"
)

// Result is the evidence-grade output of one verification.
type Result struct {
	Status       Status `json:"status"`
	MatchID      string `json:"matchId"`
	StoredHash   string `json:"storedHash"`
	ComputedHash string `json:"computedHash,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Verify recomputes an artifact's deterministic hash and compares it to the
// stored value. The bundle may or may not include the timeline, so both
// variants are recomputed; either matching counts as verified.
func Verify(artifact *contracts.MatchArtifact) Result {
	if artifact == nil {
		return Result{Status: StatusError, Message: "nil artifact"}
	}
	result := Result{
		MatchID:    artifact.Header.MatchID,
		StoredHash: artifact.DeterministicHash.Value,
	}
	if artifact.DeterministicHash.Value == "" {
		result.Status = StatusError
		result.Message = "artifact carries no deterministic hash"
		return result
	}
	if artifact.DeterministicHash.Algo != canonicalize.HashAlgo {
		result.Status = StatusError
		result.Message = fmt.Sprintf("unsupported hash algo %q", artifact.DeterministicHash.Algo)
		return result
	}

	withTimeline, err := canonicalize.DeterministicHash(artifact, canonicalize.BundleOptions{IncludeTimeline: true})
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("recompute: %v", err)
		return result
	}
	if withTimeline.Value == artifact.DeterministicHash.Value {
		result.Status = StatusVerified
		result.ComputedHash = withTimeline.Value
		return result
	}

	withoutTimeline, err := canonicalize.DeterministicHash(artifact, canonicalize.BundleOptions{})
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("recompute: %v", err)
		return result
	}
	if withoutTimeline.Value == artifact.DeterministicHash.Value {
		result.Status = StatusVerified
		result.ComputedHash = withoutTimeline.Value
		return result
	}

	result.Status = StatusHashMismatch
	result.ComputedHash = withTimeline.Value
	result.Message = "recomputed hash differs from stored value"
	return result
}
