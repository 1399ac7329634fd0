package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Less    LessConfig    `yaml:"less" toml:"less"`
	Logging LoggingConfig `yaml:"logging,omitempty" toml:"logging"`
}

// LessConfig declares the stylesheets to compile and how to fingerprint them.
type LessConfig struct {
	// Files is the ordered source→output mapping. Nil means the section was not
	// declared at all, which is distinct from an explicitly empty mapping.
	Files AssetEntries `yaml:"files" toml:"files"`
	// Integrity lists digest algorithms for sub-resource integrity, in output order.
	Integrity []string `yaml:"integrity,omitempty" toml:"integrity"`
	// Versioned appends a content-derived query token to published output paths.
	Versioned bool `yaml:"versioned" toml:"versioned"`
	// OutputPath is the trusted root compiled files are written under.
	OutputPath string `yaml:"output_path" toml:"output_path"`
	// SourcePath is the trusted root sources are read from. Empty means the working directory.
	SourcePath string `yaml:"source_path,omitempty" toml:"source_path"`
	// SiteURL prefixes hrefs of rendered link tags.
	SiteURL string `yaml:"site_url,omitempty" toml:"site_url"`
	// HeadPartial, when set, is a path under OutputPath that receives the rendered link tags.
	HeadPartial string         `yaml:"head_partial,omitempty" toml:"head_partial"`
	Compiler    CompilerConfig `yaml:"compiler" toml:"compiler"`
}

// CompilerConfig selects the stylesheet compiler.
type CompilerConfig struct {
	Engine string `yaml:"engine" toml:"engine"` // auto|lessc|css
	LessC  string `yaml:"lessc" toml:"lessc"`   // lessc binary, looked up on PATH
}

// LoggingConfig holds defaults for the CLI logger; flags and env vars take precedence.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level"`
	Format string `yaml:"format,omitempty" toml:"format"`
}

// AssetEntry is one configured source→output stylesheet mapping.
type AssetEntry struct {
	Key    string `yaml:"key" toml:"key"`
	Input  string `yaml:"input" toml:"input"`
	Output string `yaml:"output" toml:"output"`
}

// AssetEntries is the ordered list of configured entries.
//
// In YAML it is written either as a mapping, which keeps declaration order:
//
//	files:
//	  main: [less/style.less, css/main.css]
//	  print: {input: less/print.less, output: css/print.css}
//
// or as a sequence of {key, input, output} items.
type AssetEntries []AssetEntry

// Keys returns entry keys in declaration order.
func (e AssetEntries) Keys() []string {
	keys := make([]string, 0, len(e))
	for _, entry := range e {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Lookup returns the entry declared under key.
func (e AssetEntries) Lookup(key string) (AssetEntry, bool) {
	for _, entry := range e {
		if entry.Key == key {
			return entry, true
		}
	}
	return AssetEntry{}, false
}

// UnmarshalYAML accepts the mapping and sequence forms described on AssetEntries.
func (e *AssetEntries) UnmarshalYAML(node *yaml.Node) error {
	entries := AssetEntries{}

	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			entry, err := decodeMappedEntry(node.Content[i], node.Content[i+1])
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
	case yaml.SequenceNode:
		var list []AssetEntry
		if err := node.Decode(&list); err != nil {
			return err
		}
		entries = append(entries, list...)
	default:
		return fmt.Errorf("line %d: files must be a mapping or a sequence", node.Line)
	}

	*e = entries
	return nil
}

func decodeMappedEntry(keyNode, valueNode *yaml.Node) (AssetEntry, error) {
	entry := AssetEntry{Key: keyNode.Value}

	switch valueNode.Kind {
	case yaml.SequenceNode:
		var pair []string
		if err := valueNode.Decode(&pair); err != nil {
			return entry, err
		}
		if len(pair) != 2 {
			return entry, fmt.Errorf("line %d: entry %q: expected [input, output], got %d values", valueNode.Line, entry.Key, len(pair))
		}
		entry.Input, entry.Output = pair[0], pair[1]
	case yaml.MappingNode:
		var v struct {
			Input  string `yaml:"input"`
			Output string `yaml:"output"`
		}
		if err := valueNode.Decode(&v); err != nil {
			return entry, err
		}
		entry.Input, entry.Output = v.Input, v.Output
	default:
		return entry, fmt.Errorf("line %d: entry %q: expected [input, output] or {input, output}", valueNode.Line, entry.Key)
	}
	return entry, nil
}

// MarshalYAML writes the mapping form so declaration order survives a round trip.
func (e AssetEntries) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range e {
		pair := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		pair.Content = []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: entry.Input},
			{Kind: yaml.ScalarNode, Value: entry.Output},
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: entry.Key}, pair)
	}
	return node, nil
}
