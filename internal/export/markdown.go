package export

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter exports listings in Markdown format
type MarkdownExporter struct{}

// Export writes a listing as a Markdown table with a per-item detail section
func (e *MarkdownExporter) Export(listing *Listing, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Catálogo: %s\n\n", listing.Kind)
	_, _ = fmt.Fprintf(w, "**Generado:** %s  \n", listing.GeneratedAt.Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintf(w, "**Registros:** %d\n\n", len(listing.Items))

	_, _ = fmt.Fprintf(w, "| ID | Nombre | Estatus |\n")
	_, _ = fmt.Fprintf(w, "|---:|--------|---------|\n")
	for _, item := range listing.Items {
		_, _ = fmt.Fprintf(w, "| %d | %s | %s |\n", item.ID, escapeCell(item.Nombre), item.Estatus)
	}

	for _, item := range listing.Items {
		if item.Descripcion == "" && item.Precio == nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n## %d. %s\n\n", item.ID, escapeCell(item.Nombre))
		if item.Descripcion != "" {
			_, _ = fmt.Fprintf(w, "%s\n", item.Descripcion)
		}
		if item.Precio != nil {
			_, _ = fmt.Fprintf(w, "\n**Precio:** %.2f\n", *item.Precio)
		}
		if item.ImagenURL != "" {
			_, _ = fmt.Fprintf(w, "\n![imagen](%s)\n", item.ImagenURL)
		}
	}

	return nil
}

// escapeCell escapes characters that would break a Markdown table cell
func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "|", "\\|")
	return strings.ReplaceAll(text, "\n", " ")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
