package export

import (
	"fmt"
	"io"
	"time"

	"github.com/mentevital/terapia-admin/internal"
)

// Listing is the format-independent shape of a catalog dump
type Listing struct {
	Kind        string    `json:"kind" yaml:"kind"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Items       []Item    `json:"items" yaml:"items"`
}

// Item is one exported catalog record
type Item struct {
	ID          int            `json:"id" yaml:"id"`
	Nombre      string         `json:"nombre" yaml:"nombre"`
	Descripcion string         `json:"descripcion,omitempty" yaml:"descripcion,omitempty"`
	Estatus     string         `json:"estatus" yaml:"estatus"`
	Precio      *float64       `json:"precio,omitempty" yaml:"precio,omitempty"`
	ImagenURL   string         `json:"imagen_url,omitempty" yaml:"imagen_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(listing *Listing, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}

// FromEnfoques builds a Listing from focus-area records
func FromEnfoques(records []*internal.Enfoque) *Listing {
	listing := &Listing{Kind: "enfoques", GeneratedAt: time.Now()}
	for _, e := range records {
		listing.Items = append(listing.Items, Item{
			ID:          e.ID,
			Nombre:      e.Nombre,
			Descripcion: e.Descripcion,
			Estatus:     e.Estatus,
			ImagenURL:   e.ImagenURL,
			Metadata:    e.Metadata,
		})
	}
	return listing
}

// FromProductos builds a Listing from product records
func FromProductos(records []*internal.Producto) *Listing {
	listing := &Listing{Kind: "productos", GeneratedAt: time.Now()}
	for _, p := range records {
		listing.Items = append(listing.Items, Item{
			ID:          p.ID,
			Nombre:      p.Nombre,
			Descripcion: p.Descripcion,
			Estatus:     p.Estatus,
			Precio:      p.Precio,
			ImagenURL:   p.ImagenURL,
			Metadata:    p.Metadata,
		})
	}
	return listing
}
