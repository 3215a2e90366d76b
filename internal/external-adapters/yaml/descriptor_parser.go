// Package yaml provides YAML-based package descriptor parsing and repository implementations.
package yaml

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
)

// DescriptorFile is the file that marks a directory as an unpacked package
const DescriptorFile = "package.yml"

// yamlDescriptor represents the raw YAML structure
type yamlDescriptor struct {
	Package    string         `yaml:"package"`
	Manifest   string         `yaml:"manifest"`
	Resources  []yamlResource `yaml:"resources"`
	Activities []yamlActivity `yaml:"activities"`
}

type yamlResource struct {
	ID    uint32 `yaml:"id"`
	Type  string `yaml:"type"`
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type yamlActivity struct {
	Name     string `yaml:"name"`
	Exported bool   `yaml:"exported"`
	Alias    bool   `yaml:"alias"`
}

// DescriptorParser parses package.yml files
type DescriptorParser struct{}

// NewDescriptorParser creates a new YAML parser
func NewDescriptorParser() *DescriptorParser {
	return &DescriptorParser{}
}

// ParseFile parses a package.yml file; the descriptor's Dir is the file's directory
func (p *DescriptorParser) ParseFile(filePath string) (*entities.PackageDescriptor, error) {
	//nolint:gosec // G304: filePath comes from the packages directory walk
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	desc, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	desc.Dir = filepath.Dir(filePath)
	return desc, nil
}

// Parse parses YAML bytes into a PackageDescriptor entity
func (p *DescriptorParser) Parse(data []byte) (*entities.PackageDescriptor, error) {
	var raw yamlDescriptor
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if raw.Package == "" {
		return nil, fmt.Errorf("package descriptor must have a package name")
	}

	desc := &entities.PackageDescriptor{
		Name:      raw.Package,
		Manifest:  raw.Manifest,
		Strings:   make(map[entities.ResourceID]string),
		Drawables: make(map[entities.ResourceID]string),
		XML:       make(map[entities.ResourceID]string),
		Names:     make(map[string]entities.ResourceID),
	}
	if desc.Manifest == "" {
		desc.Manifest = "AndroidManifest.xml"
	}

	for _, res := range raw.Resources {
		if err := addResource(desc, res); err != nil {
			return nil, err
		}
	}

	for _, a := range raw.Activities {
		if a.Name == "" {
			return nil, fmt.Errorf("activity entry without a name")
		}
		desc.Activities = append(desc.Activities, entities.ActivityInfo{
			Name:     a.Name,
			Exported: a.Exported,
			Alias:    a.Alias,
		})
	}

	return desc, nil
}

func addResource(desc *entities.PackageDescriptor, res yamlResource) error {
	id := entities.ResourceID(res.ID)
	if !id.Valid() {
		return fmt.Errorf("resource %q has no id", res.Name)
	}

	var table map[entities.ResourceID]string
	switch res.Type {
	case entities.ResourceTypeString:
		table = desc.Strings
	case entities.ResourceTypeDrawable:
		table = desc.Drawables
	case entities.ResourceTypeXML:
		table = desc.XML
	default:
		return fmt.Errorf("resource %s has unsupported type %q", id, res.Type)
	}

	if _, dup := table[id]; dup {
		return fmt.Errorf("resource %s declared twice", id)
	}
	table[id] = res.Value

	if res.Name != "" {
		desc.Names[res.Type+"/"+res.Name] = id
	}
	return nil
}
