// Package timeline loads the ordered stage templates that seed an
// application's progress timeline.
package timeline

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

const (
	// DefaultKey names the template used for types without their own entry.
	DefaultKey = "default"

	MinStages = 5
	MaxStages = 6
)

//go:embed default.yaml
var defaultCatalogYAML []byte

// StageTemplate describes one stage to create for a new application.
type StageTemplate struct {
	Title    string                   `yaml:"title"`
	Phase    models.ApplicationStatus `yaml:"phase"`
	Assignee string                   `yaml:"assignee,omitempty"`
}

// Catalog maps application types to their stage templates.
type Catalog struct {
	templates map[string][]StageTemplate
}

// DefaultCatalog returns the built-in templates.
func DefaultCatalog() *Catalog {
	catalog, err := ParseCatalogYAML(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("timeline: embedded catalog invalid: %v", err))
	}
	return catalog
}

// Load returns the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	return LoadCatalogFile(path)
}

// LoadCatalogFile loads a catalog from an explicit file path.
func LoadCatalogFile(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("timeline: read %s: %w", path, err)
	}
	catalog, parseErr := ParseCatalogYAML(content)
	if parseErr != nil {
		return nil, fmt.Errorf("timeline: %s: %w", path, parseErr)
	}
	return catalog, nil
}

// ParseCatalogYAML decodes and validates a catalog from YAML bytes.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("timeline: catalog payload is empty")
	}
	raw := map[string][]StageTemplate{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("timeline: decode catalog: %w", err)
	}
	if _, ok := raw[DefaultKey]; !ok {
		return nil, fmt.Errorf("timeline: catalog must define a %q template", DefaultKey)
	}

	templates := make(map[string][]StageTemplate, len(raw))
	for key, stages := range raw {
		if key != DefaultKey && !models.ApplicationType(key).Valid() {
			return nil, fmt.Errorf("timeline: unknown application type %q", key)
		}
		normalized, err := normalize(stages)
		if err != nil {
			return nil, fmt.Errorf("timeline: template %q: %w", key, err)
		}
		templates[key] = normalized
	}
	return &Catalog{templates: templates}, nil
}

// For returns a copy of the stage templates for the application type.
func (c *Catalog) For(appType models.ApplicationType) []StageTemplate {
	stages, ok := c.templates[string(appType)]
	if !ok {
		stages = c.templates[DefaultKey]
	}
	out := make([]StageTemplate, len(stages))
	copy(out, stages)
	return out
}

func normalize(stages []StageTemplate) ([]StageTemplate, error) {
	if len(stages) < MinStages || len(stages) > MaxStages {
		return nil, fmt.Errorf("expected %d-%d stages, got %d", MinStages, MaxStages, len(stages))
	}
	seen := make(map[string]struct{}, len(stages))
	out := make([]StageTemplate, len(stages))
	prevRank := -1
	for i, stage := range stages {
		stage.Title = strings.TrimSpace(stage.Title)
		stage.Assignee = strings.TrimSpace(stage.Assignee)
		if stage.Title == "" {
			return nil, fmt.Errorf("stage %d: title is required", i)
		}
		key := strings.ToLower(stage.Title)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("stage %d: duplicate title %q", i, stage.Title)
		}
		seen[key] = struct{}{}
		if !stage.Phase.Valid() {
			return nil, fmt.Errorf("stage %q: unknown phase %q", stage.Title, stage.Phase)
		}
		rank := stage.Phase.Rank()
		if rank < prevRank {
			return nil, fmt.Errorf("stage %q: phase %s goes backwards", stage.Title, stage.Phase)
		}
		prevRank = rank
		out[i] = stage
	}
	if out[0].Phase != models.StatusDraft {
		return nil, fmt.Errorf("first stage must open at %s", models.StatusDraft)
	}
	// Submission completes the first stage and opens the second.
	if out[1].Phase != models.StatusSubmitted {
		return nil, fmt.Errorf("second stage must open at %s", models.StatusSubmitted)
	}
	if last := out[len(out)-1]; last.Phase != models.StatusApproved {
		return nil, fmt.Errorf("last stage must open at %s", models.StatusApproved)
	}
	return out, nil
}
