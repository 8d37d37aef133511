// Package parser walks the YAML description of a workflow bundle and builds
// the typed workflow model. The description is a mapping whose reserved
// `units` key holds the ordered unit sequence; every other top-level key is
// a workflow property. Unit entries are mappings with a mandatory `name`
// scalar plus arbitrary properties.
//
// Property keys carrying the `link_to_` prefix do not hold inline values:
// their scalar is the name of a binary payload file shipped in the same
// bundle. Resolving those files into float arrays is delegated to an
// ArrayLoader so the parser itself never touches the scratch directory
// layout.
package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/flowpack/internal/ctxlog"
	"github.com/vk/flowpack/internal/workflow"
)

const (
	// UnitsKey is the reserved top-level key holding the unit sequence.
	UnitsKey = "units"
	// NameKey is the mandatory per-unit key holding the unit name.
	NameKey = "name"
	// LinkPrefix marks a property whose value names an external binary
	// payload. The prefix is stripped from the stored property name.
	LinkPrefix = "link_to_"
)

// ArrayLoader resolves the file name referenced by a link property into its
// decoded float payload. The name is relative to the bundle root.
type ArrayLoader func(name string) ([]float32, error)

// ParseFile reads the description file at path and parses it.
func ParseFile(ctx context.Context, path string, loadArray ArrayLoader) (*workflow.Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read description file: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse description file %s: %w", path, err)
	}
	return Parse(ctx, &root, loadArray)
}

// Parse builds a workflow description from the root of a parsed YAML tree.
// Unit order in the result matches sequence order in the source exactly.
func Parse(ctx context.Context, root *yaml.Node, loadArray ArrayLoader) (*workflow.Description, error) {
	logger := ctxlog.FromContext(ctx)

	doc := deref(root)
	if doc != nil && doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = deref(doc.Content[0])
	}
	if doc == nil || doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("description root must be a mapping")
	}

	desc := workflow.NewDescription()
	var units *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], deref(doc.Content[i+1])
		if key.Value == UnitsKey {
			units = value
			continue
		}
		name, prop, err := resolveProperty(key.Value, value, loadArray)
		if err != nil {
			return nil, fmt.Errorf("workflow property %q: %w", key.Value, err)
		}
		desc.Properties[name] = prop
	}

	if units == nil {
		return nil, fmt.Errorf("description has no %q sequence", UnitsKey)
	}
	if units.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%q must be a sequence, got %s (line %d)",
			UnitsKey, kindName(units.Kind), units.Line)
	}

	for idx, entry := range units.Content {
		unit, err := parseUnit(deref(entry), loadArray)
		if err != nil {
			if unit.Name != "" {
				return nil, fmt.Errorf("unit %d (%s): %w", idx, unit.Name, err)
			}
			return nil, fmt.Errorf("unit %d: %w", idx, err)
		}
		desc.Units = append(desc.Units, unit)
	}

	logger.Debug("Description parsed.",
		"units", len(desc.Units), "workflow_properties", len(desc.Properties))
	return desc, nil
}

// parseUnit builds one unit from its mapping node.
func parseUnit(node *yaml.Node, loadArray ArrayLoader) (workflow.Unit, error) {
	unit := workflow.Unit{Properties: workflow.PropertyTable{}}
	if node == nil || node.Kind != yaml.MappingNode {
		return unit, fmt.Errorf("unit entry must be a mapping")
	}

	// The name is located first so that property errors can identify the
	// unit they came from.
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], deref(node.Content[i+1])
		if key.Value != NameKey {
			continue
		}
		if value.Kind != yaml.ScalarNode {
			return unit, fmt.Errorf("%q must be a scalar (line %d)", NameKey, value.Line)
		}
		unit.Name = value.Value
	}
	if unit.Name == "" {
		return unit, fmt.Errorf("unit is missing its %q (line %d)", NameKey, node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], deref(node.Content[i+1])
		if key.Value == NameKey {
			continue
		}
		name, prop, err := resolveProperty(key.Value, value, loadArray)
		if err != nil {
			return unit, fmt.Errorf("property %q: %w", key.Value, err)
		}
		unit.Properties[name] = prop
	}
	return unit, nil
}

// resolveProperty converts one key/value pair into its typed property. It
// returns the stored property name, which for link properties has the
// LinkPrefix stripped.
func resolveProperty(key string, value *yaml.Node, loadArray ArrayLoader) (string, workflow.PropertyValue, error) {
	if value == nil || value.Kind != yaml.ScalarNode {
		return "", nil, fmt.Errorf("unsupported value shape: %s", kindName(kindOf(value)))
	}

	if rest, ok := strings.CutPrefix(key, LinkPrefix); ok {
		floats, err := loadArray(value.Value)
		if err != nil {
			return "", nil, fmt.Errorf("failed to resolve linked payload %q: %w", value.Value, err)
		}
		return rest, workflow.FloatArrayValue(floats), nil
	}
	return key, workflow.StringValue(value.Value), nil
}

// deref follows alias nodes so anchors behave like their targets.
func deref(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

func kindOf(n *yaml.Node) yaml.Kind {
	if n == nil {
		return 0
	}
	return n.Kind
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "empty"
	}
}
