// Package indexmeta parses the manifest.yaml that marks a directory as a
// pre-built vector index and describes how it was embedded.
package indexmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const ManifestFileName = "manifest.yaml"

// Manifest describes a single pre-built index. Name defaults to the directory
// name when omitted. Dimension must match the vectors shipped alongside it;
// Collection is only meaningful for the qdrant backend.
type Manifest struct {
	Name                   string `yaml:"name"`
	EmbeddingModel         string `yaml:"embedding_model"`
	QueryPassageAsymmetric bool   `yaml:"query_passage_asymmetric"`
	Dimension              int    `yaml:"dimension"`
	Collection             string `yaml:"collection"`
}

// Load reads and validates the manifest from an index directory.
func Load(dir string) (Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if strings.TrimSpace(m.Name) == "" {
		m.Name = filepath.Base(dir)
	}
	if m.Dimension < 0 {
		return Manifest{}, fmt.Errorf("manifest %s: negative dimension %d", m.Name, m.Dimension)
	}
	return m, nil
}

// Exists reports whether dir carries a manifest, i.e. is an index directory.
func Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ManifestFileName))
	return err == nil && !info.IsDir()
}
