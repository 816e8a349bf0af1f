// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Manifest is the on-disk representation of one discovery run. The
// discover command saves it so the summarize command can pick up the same
// paper list without re-querying the backend.
type Manifest struct {
	Topic    string    `yaml:"topic"`
	DateFrom string    `yaml:"date_from"`
	DateTo   string    `yaml:"date_to"`
	Outcome  Outcome   `yaml:"outcome"`
	Attempts int       `yaml:"attempts"`
	Created  time.Time `yaml:"created"`

	Papers []types.SearchedPaper `yaml:"papers"`
}

// WriteManifest saves a discovery result to a YAML file.
func WriteManifest(path string, req Request, result Result) error {
	m := Manifest{
		Topic:    req.Topic,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Outcome:  result.Outcome,
		Attempts: result.Attempts,
		Created:  time.Now().UTC(),
		Papers:   result.Papers,
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a previously saved discovery result.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
