package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes a single YAML document. Multi-line clipboard data is
// emitted as literal blocks.
type YAMLWriter struct {
	documentWriter
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{newDocumentWriter(w, encodeYAML)}
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
