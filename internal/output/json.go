package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// newJSONEncoder returns an encoder that leaves markup readable. Clipboard
// HTML would otherwise come out as \u003c escapes.
func newJSONEncoder(w io.Writer, indent string) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc
}

// JSONWriter writes a single JSON document.
type JSONWriter struct {
	documentWriter
}

// NewJSONWriter creates a JSON writer. indent applies when pretty is set.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	if !pretty {
		indent = ""
	}
	return &JSONWriter{newDocumentWriter(w, func(w io.Writer, v any) error {
		return newJSONEncoder(w, indent).Encode(v)
	})}
}

// JSONLWriter writes newline-delimited JSON (JSONL), one item per line as
// it is written.
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	return &JSONLWriter{w: bw, enc: newJSONEncoder(bw, "")}
}

// Write writes a single item as a JSON line.
func (w *JSONLWriter) Write(data any) error {
	if err := w.enc.Encode(data); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll writes multiple items as JSON lines.
func (w *JSONLWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
