// Package canonicalize provides RFC 8785 (JSON Canonicalization Scheme)
// serialization and the determinism-bundle hashing used for match artifacts.
//
// The bundle construction rules — which fields are hashed and which are
// not — define what "deterministic" means for an artifact. The digest
// algorithm is labeled so the label and the bundle shape can evolve
// independently.
package canonicalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gowebpki/jcs"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// HashAlgo is the versioned label recorded next to every digest value.
const HashAlgo = "sha256-jcs:v1"

// Canonical returns the RFC 8785 canonical JSON representation of v.
// v is first marshaled with encoding/json so struct tags are respected,
// then transformed: keys sorted lexicographically by UTF-8 bytes, no HTML
// escaping, numbers in canonical form. Array order is preserved.
func Canonical(v any) ([]byte, error) {
	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: marshal: %w", err)
	}
	out, err := jcs.Transform(intermediate)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: transform: %w", err)
	}
	return out, nil
}

// Hash returns the SHA-256 hex digest of the canonical form of v.
func Hash(v any) (string, error) {
	b, err := Canonical(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// HashBytes returns the SHA-256 hex digest of raw bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// InputsDigest hashes the sanitized match inputs alone. It answers "same
// inputs?"; DeterministicHash answers "same inputs and same outcome?".
func InputsDigest(inputs map[string]any) (contracts.Digest, error) {
	value, err := Hash(inputs)
	if err != nil {
		return contracts.Digest{}, err
	}
	return contracts.Digest{Algo: HashAlgo, Value: value}, nil
}

// determinismBundle is the exact subset of artifact fields covered by the
// deterministic hash. Participant ids are sorted so entry order cannot
// affect the digest. PlatformMeta is deliberately absent: it may vary
// run-to-run without affecting trust.
type determinismBundle struct {
	Seed         int64           `json:"seed"`
	Participants []string        `json:"participants"`
	InputsDigest string          `json:"inputsDigest"`
	Result       bundleResult    `json:"result"`
	Timeline     []timelineEntry `json:"timeline,omitempty"`
}

type bundleResult struct {
	Winner       string             `json:"winner,omitempty"`
	Scores       map[string]float64 `json:"scores,omitempty"`
	OutcomeFlags []string           `json:"outcomeFlags,omitempty"`
}

type timelineEntry struct {
	Idx  int    `json:"idx"`
	Code string `json:"code"`
	At   int64  `json:"at"`
}

// BundleOptions controls optional bundle content.
type BundleOptions struct {
	// IncludeTimeline adds {idx, code, at} per event to the bundle.
	IncludeTimeline bool
}

// DeterministicHash builds the determinism bundle from an artifact and
// hashes it. The artifact's stored DeterministicHash field is ignored, so
// the same function serves both production and audit recomputation.
func DeterministicHash(a *contracts.MatchArtifact, opts BundleOptions) (contracts.Digest, error) {
	ids := a.ParticipantIDs()
	sort.Strings(ids)

	bundle := determinismBundle{
		Seed:         a.Seed,
		Participants: ids,
		InputsDigest: a.InputsDigest.Value,
		Result: bundleResult{
			Winner:       a.Result.WinnerParticipantID,
			Scores:       a.Result.ScoresByParticipantID,
			OutcomeFlags: a.Result.OutcomeFlags,
		},
	}
	if opts.IncludeTimeline {
		bundle.Timeline = make([]timelineEntry, len(a.Timeline))
		for i, ev := range a.Timeline {
			bundle.Timeline[i] = timelineEntry{Idx: ev.Idx, Code: ev.Code, At: ev.At}
		}
	}

	value, err := Hash(bundle)
	if err != nil {
		return contracts.Digest{}, err
	}
	return contracts.Digest{Algo: HashAlgo, Value: value}, nil
}
