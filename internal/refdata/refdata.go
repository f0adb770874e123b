// Package refdata loads the curated reference tables used to resolve and classify contributors.
package refdata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/huangsam/gitcensus/core/classify"
	"github.com/huangsam/gitcensus/core/identity"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"gopkg.in/yaml.v3"
)

// Tables holds every externally supplied lookup table.
type Tables struct {
	AnonymousValues  []string            `yaml:"anonymous_values"`
	Aliases          map[string][]string `yaml:"aliases"`
	KnownNamespaces  []string            `yaml:"known_namespaces"`
	InternalExternal map[string]string   `yaml:"internal_external"`
	NamespaceCourses map[string]string   `yaml:"namespace_courses"`
}

// Default returns the built-in sample tables used when no file is configured.
func Default() *Tables {
	return &Tables{
		AnonymousValues: []string{
			"user@station.local", "student", "you", "you@example.com", "noreply",
			"Your Name", "noreply@github.com", "r", "root_ubuntu", "ubuntu",
			"bob", "meh", "root", "root@ubuntu",
		},
		Aliases:         map[string][]string{"ben": {"jianmin"}},
		KnownNamespaces: []string{"helpdesk"},
		InternalExternal: map[string]string{
			"ben": string(schema.InternalUser),
		},
		NamespaceCourses: map[string]string{
			"helpdesk": "Organization Administration",
			"vta":      "Infrastructure",
			"Module1":  "Example Course",
			"Module2":  "Example Course",
		},
	}
}

// Load reads tables from a YAML file. An empty path yields Default().
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read reference data %s: %w", contract.ErrConfiguration, path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML tables. Unknown keys are rejected.
func Parse(data []byte) (*Tables, error) {
	tables := &Tables{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(tables); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: malformed reference data: %w", contract.ErrConfiguration, err)
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Validate checks that every contributor label is internal or external.
func (t *Tables) Validate() error {
	for key, label := range t.InternalExternal {
		if _, ok := schema.ValidLabeledUserTypes[schema.UserType(label)]; !ok {
			return fmt.Errorf("%w: contributor %q has label %q; must be internal or external", contract.ErrConfiguration, key, label)
		}
	}
	return nil
}

// UserTypes returns the contributor table with typed labels.
func (t *Tables) UserTypes() map[string]schema.UserType {
	out := make(map[string]schema.UserType, len(t.InternalExternal))
	for key, label := range t.InternalExternal {
		out[key] = schema.UserType(label)
	}
	return out
}

// Normalizer builds the identity normalizer for these tables.
func (t *Tables) Normalizer() *identity.Normalizer {
	return identity.NewNormalizer(t.Aliases, t.AnonymousValues)
}

// Classifier builds the classifier for these tables.
func (t *Tables) Classifier() *classify.Classifier {
	return classify.New(t.NamespaceCourses, t.KnownNamespaces, t.UserTypes())
}

// EmitContributorSkeleton writes an internal_external YAML block labelling
// every key with defaultLabel, ready to be edited and merged into a tables file.
func EmitContributorSkeleton(w io.Writer, keys []string, defaultLabel schema.UserType) error {
	if _, ok := schema.ValidLabeledUserTypes[defaultLabel]; !ok {
		return fmt.Errorf("%w: default label %q must be internal or external", contract.ErrConfiguration, defaultLabel)
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	entries := make(map[string]string, len(sorted))
	for _, k := range sorted {
		entries[k] = string(defaultLabel)
	}
	data, err := yaml.Marshal(map[string]map[string]string{"internal_external": entries})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
