package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter exports listings in YAML format
type YAMLExporter struct{}

// Export writes a listing as a YAML document
func (e *YAMLExporter) Export(listing *Listing, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(listing)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
