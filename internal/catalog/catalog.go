// Package catalog loads the literal display data of the dashboard screens.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/autoops-ai/backend/internal/models"
)

//go:embed default.yaml
var defaultCatalog []byte

// Dashboard is the overview screen: headline stats and recent activity.
type Dashboard struct {
	Stats          []models.StatCard     `json:"stats" yaml:"stats"`
	RecentActivity []models.ActivityItem `json:"recentActivity" yaml:"recent_activity"`
}

// Catalog is the complete set of static screen data.
type Catalog struct {
	Dashboard     Dashboard             `yaml:"dashboard"`
	Workflows     []models.Workflow     `yaml:"workflows"`
	Analytics     models.AnalyticsView  `yaml:"analytics"`
	Settings      models.SettingsView   `yaml:"settings"`
	SeedDocuments []models.SeedDocument `yaml:"seed_documents"`
}

// Load reads a catalog file. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader parses a catalog from an io.Reader.
func LoadFromReader(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return LoadFromReader(bytes.NewReader(defaultCatalog))
}

func (c *Catalog) validate() error {
	seen := make(map[string]struct{}, len(c.Workflows))
	for _, wf := range c.Workflows {
		if wf.ID == "" {
			return fmt.Errorf("workflow %q has no id", wf.Name)
		}
		if _, dup := seen[wf.ID]; dup {
			return fmt.Errorf("duplicate workflow id %q", wf.ID)
		}
		seen[wf.ID] = struct{}{}
	}
	for i, seed := range c.SeedDocuments {
		if seed.Name == "" {
			return fmt.Errorf("seed document %d has no name", i)
		}
	}
	return nil
}

// Workflow returns the workflow with the given ID.
func (c *Catalog) Workflow(id string) (models.Workflow, bool) {
	for _, wf := range c.Workflows {
		if wf.ID == id {
			return wf, true
		}
	}
	return models.Workflow{}, false
}
