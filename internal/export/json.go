package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports listings in JSON format (pretty-printed)
type JSONExporter struct{}

// Export writes a listing as an indented JSON document
func (e *JSONExporter) Export(listing *Listing, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(listing)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
