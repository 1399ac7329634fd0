package pipeline

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Record is the published naming and integrity information for one entry.
type Record struct {
	// CSSFile is the declared output path, suffixed with the version token when versioning is on.
	CSSFile string `json:"css_file" yaml:"css_file"`
	// Integrity is the space-separated "<alg>-<base64>" list; empty when no algorithm applies.
	Integrity string `json:"integrity" yaml:"integrity"`
}

// Records holds Record values keyed by entry key, in configuration order.
// The zero value is empty and ready to use.
type Records struct {
	keys  []string
	byKey map[string]Record
}

// Set stores rec under key. A key set twice keeps its first position.
func (r *Records) Set(key string, rec Record) {
	if r.byKey == nil {
		r.byKey = make(map[string]Record)
	}
	if _, exists := r.byKey[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.byKey[key] = rec
}

// Get returns the record stored under key.
func (r Records) Get(key string) (Record, bool) {
	rec, ok := r.byKey[key]
	return rec, ok
}

// Keys returns entry keys in the order they were stored.
func (r Records) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Records) Len() int { return len(r.keys) }

// MarshalJSON writes a JSON object whose members follow Keys order.
func (r Records) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.byKey[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes a mapping whose keys follow Keys order.
func (r Records) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range r.keys {
		var value yaml.Node
		if err := value.Encode(r.byKey[key]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &value)
	}
	return node, nil
}
