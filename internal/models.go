package internal

import "time"

// Estatus labels used by the backend for soft-deleted records
const (
	EstatusActivo   = "Activo"
	EstatusInactivo = "Inactivo"
)

// Enfoque represents a focus-area catalog entity in UI shape.
// Every field is defaulted by the mapper; none is ever left undefined.
type Enfoque struct {
	ID          int            `json:"id"`
	Nombre      string         `json:"nombre"`
	Descripcion string         `json:"descripcion"`
	Metadata    map[string]any `json:"metadata"`
	ImagenURL   string         `json:"imagen_url"`
	Estatus     string         `json:"estatus"`
	Version     string         `json:"version"`
	CreatedAt   string         `json:"fecha_creacion"`
	UpdatedAt   string         `json:"fecha_actualizacion"`
}

// RecordID implements CatalogRecord
func (e *Enfoque) RecordID() int {
	if e == nil {
		return 0
	}
	return e.ID
}

// Active implements CatalogRecord
func (e *Enfoque) Active() bool {
	return e != nil && e.Estatus != EstatusInactivo
}

// SearchText implements CatalogRecord: concatenation of searchable fields
func (e *Enfoque) SearchText() string {
	return e.Nombre + " " + e.Descripcion
}

// Producto represents a product catalog entity in UI shape
type Producto struct {
	ID          int            `json:"id"`
	Nombre      string         `json:"nombre"`
	Descripcion string         `json:"descripcion"`
	Precio      *float64       `json:"precio"`
	Metadata    map[string]any `json:"metadata"`
	ImagenURL   string         `json:"imagen_url"`
	Estatus     string         `json:"estatus"`
	Version     string         `json:"version"`
	CreatedAt   string         `json:"fecha_creacion"`
	UpdatedAt   string         `json:"fecha_actualizacion"`
}

// RecordID implements CatalogRecord
func (p *Producto) RecordID() int {
	if p == nil {
		return 0
	}
	return p.ID
}

// Active implements CatalogRecord
func (p *Producto) Active() bool {
	return p != nil && p.Estatus != EstatusInactivo
}

// SearchText implements CatalogRecord
func (p *Producto) SearchText() string {
	return p.Nombre + " " + p.Descripcion
}

// HorarioSlot represents a therapist schedule slot in UI shape.
// Raw keeps the original row so deactivation can resolve the backend id
// even when the mapped id is missing.
type HorarioSlot struct {
	ID           int            `json:"id"`
	DiaSemana    int            `json:"dia_semana"`
	DiaLabel     string         `json:"dia_label"`
	Horario      string         `json:"horario"`
	HoraInicio   string         `json:"hora_inicio"`
	HoraFin      string         `json:"hora_fin"`
	TipoAtencion string         `json:"tipo_atencion"`
	Canal        string         `json:"canal"`
	Ubicacion    string         `json:"ubicacion"`
	Metadata     map[string]any `json:"metadata"`
	Raw          map[string]any `json:"-"`
}

// HorarioForm carries the input for creating a schedule slot
type HorarioForm struct {
	DiaSemana    int
	HoraInicio   string
	HoraFin      string
	TipoAtencion string
	Canal        string
	Ubicacion    string
	Metadata     map[string]any
}

// Perfil represents a therapist profile in UI shape
type Perfil struct {
	IDTerapeuta  int      `json:"id_terapeuta"`
	Nombre       string   `json:"nombre"`
	Apellidos    string   `json:"apellidos"`
	Email        string   `json:"email"`
	Telefono     string   `json:"telefono"`
	Sexo         string   `json:"sexo"`
	Descripcion  string   `json:"descripcion"`
	Cedula       string   `json:"cedula"`
	Especialidad string   `json:"especialidad"`
	Tarifa       *float64 `json:"tarifa"`
	FotoURL      string   `json:"foto_url"`
}

// ListOptions controls a catalog listing request
type ListOptions struct {
	Page       int
	PageSize   int
	OnlyActive bool
}

// CatalogDraft is the in-progress edit state for a catalog entity.
// Fields holds the editable values keyed by backend field name; Original
// is the last-fetched snapshot the update path diffs against.
type CatalogDraft struct {
	ID       int
	Fields   map[string]any
	Original map[string]any
	File     *FileAttachment
}

// FileAttachment is a pending file for a multipart create/update call
type FileAttachment struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// OverlayEntry is a cached record plus its capture timestamp
type OverlayEntry[T any] struct {
	Record     T         `json:"record"`
	CapturedAt time.Time `json:"captured_at"`
}
