package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter exports listings in JSONL format (one record per line)
type JSONLExporter struct{}

// Export writes each listing item as a single JSON line
func (e *JSONLExporter) Export(listing *Listing, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, item := range listing.Items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to encode item %d: %w", item.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
