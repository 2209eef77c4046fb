// Package catalog flattens an OpenAPI/Swagger description into the list of
// callable API descriptors the router offers to the model.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultParamType is used when a parameter schema omits its type.
const defaultParamType = "string"

// Parameter describes one parameter of an API operation.
type Parameter struct {
	Name        string `json:"name"`
	In          string `json:"in"` // path, query, body, header
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
}

// Descriptor is one callable (path, method) pair from the description document.
type Descriptor struct {
	Name       string      `json:"name"`
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	Parameters []Parameter `json:"parameters"`
}

// Catalog is the ordered, read-only set of descriptors loaded at startup.
type Catalog struct {
	descriptors []Descriptor
}

// New builds a catalog from descriptors, preserving their order.
func New(descriptors []Descriptor) *Catalog {
	c := &Catalog{descriptors: make([]Descriptor, len(descriptors))}
	copy(c.descriptors, descriptors)
	return c
}

// Lookup returns the first descriptor whose name matches exactly.
// Later descriptors with the same name are shadowed.
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	for _, d := range c.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Descriptors returns a copy of all descriptors in document order.
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	return len(c.descriptors)
}

// Load reads and parses the description document at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read API description %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API description %s: %w", path, err)
	}
	return cat, nil
}

// Parse flattens a JSON or YAML description document. Paths, methods and
// parameters keep their document order. Methods are not validated here.
func Parse(data []byte) (*Catalog, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("document root is not an object")
	}

	paths := mappingValue(root, "paths")
	if paths == nil {
		return nil, errors.New(`document has no "paths" object`)
	}
	if paths.Kind != yaml.MappingNode {
		return nil, errors.New(`"paths" is not an object`)
	}

	var descriptors []Descriptor
	for i := 0; i+1 < len(paths.Content); i += 2 {
		path := paths.Content[i].Value
		methods := paths.Content[i+1]
		if methods.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("path %q is not an object", path)
		}
		for j := 0; j+1 < len(methods.Content); j += 2 {
			method := methods.Content[j].Value
			op := methods.Content[j+1]
			// Path-level "parameters", "summary", "servers" are not operations.
			if op.Kind != yaml.MappingNode {
				continue
			}
			params, err := parseParameters(op)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			descriptors = append(descriptors, Descriptor{
				Name:       nameFromPath(path),
				Method:     strings.ToUpper(method),
				Path:       path,
				Parameters: params,
			})
		}
	}
	return &Catalog{descriptors: descriptors}, nil
}

// decodeDocument returns the document as a node tree. JSON input is walked
// with encoding/json, since yaml.v3 rejects valid JSON escapes such as "\/".
func decodeDocument(data []byte) (*yaml.Node, error) {
	if json.Valid(data) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		root, err := jsonNode(dec)
		if err != nil {
			return nil, err
		}
		return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// jsonNode reads one JSON value from dec, keeping object key order.
func jsonNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if v == '{' {
			node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		for dec.More() {
			if node.Kind == yaml.MappingNode {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				node.Content = append(node.Content, scalar("!!str", key))
			}
			child, err := jsonNode(dec)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		// closing delimiter
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return node, nil
	case string:
		return scalar("!!str", v), nil
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
			return scalar("!!float", v.String()), nil
		}
		return scalar("!!int", v.String()), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(v)), nil
	case nil:
		return scalar("!!null", "null"), nil
	default:
		return nil, fmt.Errorf("unexpected JSON token %v", tok)
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

type rawParameter struct {
	Ref         string `yaml:"$ref"`
	Name        string `yaml:"name"`
	In          string `yaml:"in"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Schema      *struct {
		Type string `yaml:"type"`
	} `yaml:"schema"`
}

func parseParameters(op *yaml.Node) ([]Parameter, error) {
	node := mappingValue(op, "parameters")
	if node == nil {
		return []Parameter{}, nil
	}
	var raw []rawParameter
	if err := node.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	params := make([]Parameter, 0, len(raw))
	for i, rp := range raw {
		if rp.Ref != "" && rp.Name == "" {
			continue
		}
		if rp.Name == "" {
			return nil, fmt.Errorf("parameter %d has no name", i)
		}
		if rp.In == "" {
			return nil, fmt.Errorf("parameter %q has no location", rp.Name)
		}
		typ := defaultParamType
		if rp.Schema != nil && rp.Schema.Type != "" {
			typ = rp.Schema.Type
		}
		params = append(params, Parameter{
			Name:        rp.Name,
			In:          rp.In,
			Description: rp.Description,
			Required:    rp.Required,
			Type:        typ,
		})
	}
	return params, nil
}

// nameFromPath returns the last "/" segment, e.g. "/api/users" -> "users".
func nameFromPath(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
