package output

import (
	"bufio"
	"io"
)

// documentWriter buffers items and encodes them as one document on Flush:
// the item itself when only one was written, otherwise a list.
type documentWriter struct {
	w      *bufio.Writer
	encode func(io.Writer, any) error
	items  []any
}

func newDocumentWriter(w io.Writer, encode func(io.Writer, any) error) documentWriter {
	return documentWriter{w: bufio.NewWriter(w), encode: encode}
}

// Write buffers a single item.
func (d *documentWriter) Write(data any) error {
	d.items = append(d.items, data)
	return nil
}

// WriteAll buffers multiple items.
func (d *documentWriter) WriteAll(data []any) error {
	d.items = append(d.items, data...)
	return nil
}

// Flush encodes the buffered items. Nothing is written when none are
// buffered, so repeated flushes emit the document once.
func (d *documentWriter) Flush() error {
	if len(d.items) > 0 {
		var doc any = d.items
		if len(d.items) == 1 {
			doc = d.items[0]
		}
		if err := d.encode(d.w, doc); err != nil {
			return err
		}
		d.items = d.items[:0]
	}
	return d.w.Flush()
}

// Close flushes the writer.
func (d *documentWriter) Close() error {
	return d.Flush()
}
