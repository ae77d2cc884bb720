package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a design document split into its recognized top-level keys.
// Each section is a generic node tree as produced by the YAML decoder;
// collaborators that parse the document themselves can hand the trees in
// directly. Unknown top-level keys are ignored.
type Document struct {
	Clock map[string]interface{}
	Reset map[string]interface{}
	// Raw is the whole document, kept for schema validation.
	Raw map[string]interface{}
}

// LoadDocument reads and decodes a YAML design document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading design document: %w", err)
	}
	return DecodeDocument(data)
}

// DecodeDocument decodes YAML bytes into a Document.
func DecodeDocument(data []byte) (*Document, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing design document: %w", err)
	}
	doc := &Document{Raw: raw}
	if m, ok := raw["clock"].(map[string]interface{}); ok {
		doc.Clock = m
	}
	if m, ok := raw["reset"].(map[string]interface{}); ok {
		doc.Reset = m
	}
	return doc, nil
}

// Node-tree accessors. The YAML decoder hands back interface{} values; these
// helpers normalize the scalar types a document can reasonably contain.

func nodeString(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case int:
		return fmt.Sprintf("%d", s)
	case float64:
		return fmt.Sprintf("%g", s)
	case bool:
		if s {
			return "true"
		}
		return "false"
	}
	return ""
}

func nodeInt(m map[string]interface{}, key string, def int) int {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

func nodeBool(m map[string]interface{}, key string, def bool) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func nodeMap(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	sub, ok := v.(map[string]interface{})
	return sub, ok
}

func nodeList(m map[string]interface{}, key string) []interface{} {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	return list
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}
