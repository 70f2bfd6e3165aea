// Package config loads and validates the format, game-mode, and app
// configuration registries that supply session snapshots. Records are
// schema-validated at load time and looked up by {id, version}; a record's
// engineCompatVersion must fall inside the platform's supported range.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

var ErrRecordNotFound = errors.New("registry record not found")

// recordSchema validates every registry record at load time.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "version"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "version": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "engineCompatVersion": {"type": "string"},
    "data": {"type": "object"}
  }
}`

// Loader holds the validated format and game-mode registries.
type Loader struct {
	mu        sync.RWMutex
	schema    *jsonschema.Schema
	formats   map[string]contracts.RegistryRecord
	gameModes map[string]contracts.RegistryRecord
	rulesets  map[string]contracts.RegistryRecord
	// compat is the semver range of engineCompatVersion values the
	// platform supports.
	compat *semver.Constraints
}

// NewLoader creates an empty loader accepting the given compat range, e.g.
// ">=1.0.0 <2.0.0".
func NewLoader(compatRange string) (*Loader, error) {
	compat, err := semver.NewConstraint(compatRange)
	if err != nil {
		return nil, fmt.Errorf("config: compat range: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	const schemaURL = "https://matchspine.schemas.local/registry_record.schema.json"
	if err := compiler.AddResource(schemaURL, strings.NewReader(recordSchema)); err != nil {
		return nil, fmt.Errorf("config: schema load: %w", err)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("config: schema compile: %w", err)
	}

	return &Loader{
		schema:    compiled,
		compat:    compat,
		formats:   make(map[string]contracts.RegistryRecord),
		gameModes: make(map[string]contracts.RegistryRecord),
		rulesets:  make(map[string]contracts.RegistryRecord),
	}, nil
}

// RegistryKind names one of the three record registries.
type RegistryKind string

const (
	KindFormat   RegistryKind = "format"
	KindGameMode RegistryKind = "gameMode"
	KindRuleset  RegistryKind = "ruleset"
)

// AddRecord validates and installs a record into the named registry.
func (l *Loader) AddRecord(kind RegistryKind, record contracts.RegistryRecord) error {
	if err := l.validate(record); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	registry, err := l.registryFor(kind)
	if err != nil {
		return err
	}
	registry[recordKey(record.ID, record.Version)] = record
	return nil
}

// LoadFile loads records for one registry from a YAML or JSON file holding
// a list of records.
func (l *Loader) LoadFile(kind RegistryKind, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var records []contracts.RegistryRecord
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	for _, record := range records {
		if err := l.AddRecord(kind, record); err != nil {
			return fmt.Errorf("config: %s record %s@%s: %w", kind, record.ID, record.Version, err)
		}
	}
	return nil
}

// validate schema-checks a record and enforces the compat range.
func (l *Loader) validate(record contracts.RegistryRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := l.schema.Validate(generic); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	if record.EngineCompatVersion != "" {
		v, err := semver.NewVersion(record.EngineCompatVersion)
		if err != nil {
			return fmt.Errorf("engineCompatVersion %q: %w", record.EngineCompatVersion, err)
		}
		if !l.compat.Check(v) {
			return fmt.Errorf("engineCompatVersion %q outside supported range", record.EngineCompatVersion)
		}
	}
	return nil
}

// Lookup returns a record by kind, id, and version.
func (l *Loader) Lookup(kind RegistryKind, ref contracts.VersionedRef) (contracts.RegistryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	registry, err := l.registryFor(kind)
	if err != nil {
		return contracts.RegistryRecord{}, err
	}
	record, ok := registry[recordKey(ref.ID, ref.Version)]
	if !ok {
		return contracts.RegistryRecord{}, fmt.Errorf("%w: %s %s@%s", ErrRecordNotFound, kind, ref.ID, ref.Version)
	}
	return record, nil
}

// Resolve implements session.ConfigResolver: it resolves a session pointer
// into an immutable snapshot.
func (l *Loader) Resolve(pointer contracts.SessionPointer) (*contracts.SessionSnapshot, error) {
	format, err := l.Lookup(KindFormat, pointer.Format)
	if err != nil {
		return nil, err
	}
	gameMode, err := l.Lookup(KindGameMode, pointer.GameMode)
	if err != nil {
		return nil, err
	}
	snapshot := &contracts.SessionSnapshot{Format: format, GameMode: gameMode}
	if pointer.Ruleset != nil {
		ruleset, err := l.Lookup(KindRuleset, *pointer.Ruleset)
		if err != nil {
			return nil, err
		}
		snapshot.Ruleset = &ruleset
	}
	return snapshot, nil
}

func (l *Loader) registryFor(kind RegistryKind) (map[string]contracts.RegistryRecord, error) {
	switch kind {
	case KindFormat:
		return l.formats, nil
	case KindGameMode:
		return l.gameModes, nil
	case KindRuleset:
		return l.rulesets, nil
	default:
		return nil, fmt.Errorf("config: unknown registry kind %q", kind)
	}
}

func recordKey(id, version string) string {
	return id + "@" + version
}
