package canonicalize

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

func TestCanonical_SortsKeys(t *testing.T) {
	input := map[string]any{"c": 3, "a": 1, "b": 2}

	b, err := Canonical(input)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(b))
}

func TestCanonical_NoHTMLEscaping(t *testing.T) {
	input := map[string]string{"html": "<b> & </b>"}

	b, err := Canonical(input)
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<b> & </b>"}`, string(b))
}

func TestCanonical_StructAndMapAgree(t *testing.T) {
	type pair struct {
		B int `json:"b"`
		A int `json:"a"`
	}

	fromStruct, err := Hash(pair{A: 1, B: 2})
	require.NoError(t, err)
	fromMap, err := Hash(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	assert.Equal(t, fromMap, fromStruct)
}

func sampleArtifact() *contracts.MatchArtifact {
	return &contracts.MatchArtifact{
		Header: contracts.ArtifactHeader{
			UniverseCode:  "BOBA",
			EngineCode:    "COINDUEL",
			EngineVersion: "1.0.0",
			ModeCode:      "DUEL",
			MatchID:       "m-001",
		},
		Participants: []contracts.Participant{
			{ParticipantID: "P2"},
			{ParticipantID: "P1"},
		},
		Seed:         99,
		InputsDigest: contracts.Digest{Algo: HashAlgo, Value: "deadbeef"},
		Result: contracts.MatchResult{
			WinnerParticipantID:   "P1",
			ScoresByParticipantID: map[string]float64{"P1": 3, "P2": 1},
		},
		Timeline: []contracts.TimelineEvent{
			{Idx: 0, Code: "BATTLE_RESOLVED", At: 100},
			{Idx: 1, Code: "BATTLE_RESOLVED", At: 101},
		},
	}
}

func TestDeterministicHash_Idempotent(t *testing.T) {
	a := sampleArtifact()

	first, err := DeterministicHash(a, BundleOptions{IncludeTimeline: true})
	require.NoError(t, err)
	second, err := DeterministicHash(a, BundleOptions{IncludeTimeline: true})
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, HashAlgo, first.Algo)
}

func TestDeterministicHash_ParticipantOrderIrrelevant(t *testing.T) {
	a := sampleArtifact()
	b := sampleArtifact()
	b.Participants[0], b.Participants[1] = b.Participants[1], b.Participants[0]

	ha, err := DeterministicHash(a, BundleOptions{})
	require.NoError(t, err)
	hb, err := DeterministicHash(b, BundleOptions{})
	require.NoError(t, err)

	assert.Equal(t, ha.Value, hb.Value)
}

func TestDeterministicHash_ScoreMutationChangesValue(t *testing.T) {
	a := sampleArtifact()
	original, err := DeterministicHash(a, BundleOptions{IncludeTimeline: true})
	require.NoError(t, err)

	a.Result.ScoresByParticipantID["P2"] = 2
	mutated, err := DeterministicHash(a, BundleOptions{IncludeTimeline: true})
	require.NoError(t, err)

	assert.NotEqual(t, original.Value, mutated.Value)
}

func TestDeterministicHash_PlatformMetaExcluded(t *testing.T) {
	a := sampleArtifact()
	base, err := DeterministicHash(a, BundleOptions{IncludeTimeline: true})
	require.NoError(t, err)

	a.PlatformMeta = map[string]any{"host": "node-7", "runAt": "2026-08-30T12:00:00Z"}
	withMeta, err := DeterministicHash(a, BundleOptions{IncludeTimeline: true})
	require.NoError(t, err)

	assert.Equal(t, base.Value, withMeta.Value)
}

func TestDeterministicHash_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("hash is stable across recomputation", prop.ForAll(
		func(seed int64, scoreA, scoreB float64, winner string) bool {
			a := sampleArtifact()
			a.Seed = seed
			a.Result.WinnerParticipantID = winner
			a.Result.ScoresByParticipantID = map[string]float64{"P1": scoreA, "P2": scoreB}

			first, err := DeterministicHash(a, BundleOptions{})
			if err != nil {
				return false
			}
			second, err := DeterministicHash(a, BundleOptions{})
			if err != nil {
				return false
			}
			return first.Value == second.Value
		},
		gen.Int64(), gen.Float64Range(-1e6, 1e6), gen.Float64Range(-1e6, 1e6), gen.AlphaString(),
	))

	properties.Property("seed change changes the hash", prop.ForAll(
		func(seed int64) bool {
			a := sampleArtifact()
			a.Seed = seed
			b := sampleArtifact()
			b.Seed = seed + 1

			ha, err := DeterministicHash(a, BundleOptions{})
			if err != nil {
				return false
			}
			hb, err := DeterministicHash(b, BundleOptions{})
			if err != nil {
				return false
			}
			return ha.Value != hb.Value
		},
		gen.Int64Range(-1<<40, 1<<40),
	))

	properties.TestingRun(t)
}

func TestInputsDigest(t *testing.T) {
	inputs := map[string]any{"modeCode": "DUEL", "universeCode": "BOBA"}

	first, err := InputsDigest(inputs)
	require.NoError(t, err)
	second, err := InputsDigest(map[string]any{"universeCode": "BOBA", "modeCode": "DUEL"})
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, HashAlgo, first.Algo)

	changed, err := InputsDigest(map[string]any{"universeCode": "OTHER", "modeCode": "DUEL"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Value, changed.Value)
}
