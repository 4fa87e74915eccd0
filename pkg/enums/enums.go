// Package enums loads enumeration lists (deployment strategies, use-case
// categories) from YAML files.
//
// A list document is either a sequence of strings or a mapping whose keys are
// the members, in document order; mapping values (descriptions) are ignored.
// A set document maps enumeration names to list documents.
package enums

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	wizard "github.com/goliatone/go-wizard"
	"gopkg.in/yaml.v3"
)

// Set is a named collection of enumeration lists. It implements
// wizard.EnumerationProvider.
type Set map[string][]string

var _ wizard.EnumerationProvider = Set{}

// Members implements wizard.EnumerationProvider.
func (s Set) Members(name string) ([]string, bool) {
	members, ok := s[name]
	return members, ok
}

// Merge returns a new set; later sets replace whole lists of earlier ones.
func Merge(sets ...Set) Set {
	out := Set{}
	for _, set := range sets {
		for name, members := range set {
			out[name] = slices.Clone(members)
		}
	}
	return out
}

// ParseList reads one list document.
func ParseList(data []byte) ([]string, error) {
	root, err := parseRoot(data)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return []string{}, nil
	}
	return listMembers(root)
}

// ParseSet reads a set document.
func ParseSet(data []byte) (Set, error) {
	root, err := parseRoot(data)
	if err != nil {
		return nil, err
	}
	set := Set{}
	if root == nil {
		return set, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("enums: line %d: set document must be a mapping", root.Line)
	}
	var errs []error
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		members, err := listMembers(root.Content[i+1])
		if err != nil {
			errs = append(errs, fmt.Errorf("enums: %s: %w", name, err))
			continue
		}
		set[name] = members
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadList reads a list document from path.
func LoadList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("enums: read %s: %w", path, err)
	}
	members, err := ParseList(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return members, nil
}

// LoadFiles builds a set from one list file per enumeration name. Empty paths
// are skipped.
func LoadFiles(paths map[string]string) (Set, error) {
	set := Set{}
	var errs []error
	for name, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		members, err := LoadList(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set[name] = members
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return set, nil
}

// SplitList parses a comma separated list, trimming blanks.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

func parseRoot(data []byte) (*yaml.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("enums: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.AliasNode {
		root = root.Alias
	}
	return root, nil
}

func listMembers(node *yaml.Node) ([]string, error) {
	var members []string
	add := func(item *yaml.Node) error {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: member must be a scalar", item.Line)
		}
		value := strings.TrimSpace(item.Value)
		if value == "" {
			return fmt.Errorf("line %d: member must not be empty", item.Line)
		}
		if slices.Contains(members, value) {
			return fmt.Errorf("line %d: duplicate member %q", item.Line, value)
		}
		members = append(members, value)
		return nil
	}

	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			if err := add(node.Content[i]); err != nil {
				return nil, err
			}
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if err := add(item); err != nil {
				return nil, err
			}
		}
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return []string{}, nil
		}
		return nil, fmt.Errorf("line %d: list must be a sequence or a mapping", node.Line)
	default:
		return nil, fmt.Errorf("line %d: list must be a sequence or a mapping", node.Line)
	}
	if members == nil {
		members = []string{}
	}
	return members, nil
}
