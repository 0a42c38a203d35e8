package internal

// EnfoquesClient manages the focus-areas catalog
type EnfoquesClient struct {
	*CatalogClient[*Enfoque]
}

// NewEnfoquesClient builds the focus-areas client over the shared catalog
// core. Deactivated focus-areas keep an inactive-flagged overlay entry:
// active-only listings suppress their reinjection while the entry remains
// available for audit.
func NewEnfoquesClient(gw Gateway, sess *Session, store KVStore, cfg *Config) *EnfoquesClient {
	overlay := NewOverlayCache[*Enfoque](OverlayKindEnfoques, store, cfg.OverlayMaxAge)
	desc := CatalogDescriptor[*Enfoque]{
		Kind:      OverlayKindEnfoques,
		IDParam:   "id_enfoque",
		EntityKey: "enfoque",
		ListKey:   "enfoques",

		ListEndpoint:       EndpointEnfoquesListar,
		DetailEndpoint:     EndpointEnfoqueObtener,
		CreateEndpoint:     EndpointEnfoqueCrear,
		CreateFileEndpoint: EndpointEnfoqueCrearArchivo,
		UpdateEndpoint:     EndpointEnfoqueModificar,
		UpdateFileEndpoint: EndpointEnfoqueModificarArchivo,
		DeactivateEndpoint: EndpointEnfoqueDesactivar,

		MapDetail:  MapEnfoque,
		MapListRow: MapEnfoqueListRow,

		PatchFields: EnfoquePatchFields,

		ApplyFields: applyEnfoqueFields,
		SetInactive: func(e *Enfoque) { e.Estatus = EstatusInactivo },

		RemoveOnDeactivate: false,
	}
	return &EnfoquesClient{NewCatalogClient(gw, sess, desc, overlay)}
}

// applyEnfoqueFields shallow-merges backend field values into the record
func applyEnfoqueFields(e *Enfoque, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "nombre":
			e.Nombre = rawString(fields, key, e.Nombre)
		case "descripcion":
			e.Descripcion = rawString(fields, key, e.Descripcion)
		case "metadata":
			if m, ok := value.(map[string]any); ok {
				e.Metadata = m
			}
		case "imagen_url":
			e.ImagenURL = rawString(fields, key, e.ImagenURL)
		case "estatus":
			e.Estatus = normalizeEstatus(rawString(fields, key, e.Estatus))
		case "version":
			e.Version = rawString(fields, key, e.Version)
		case "fecha_actualizacion":
			e.UpdatedAt = rawString(fields, key, e.UpdatedAt)
		}
	}
}

// PatchSnapshot exposes the patchable fields of a record as the original
// snapshot an update draft diffs against.
func (e *Enfoque) PatchSnapshot() map[string]any {
	return map[string]any{
		"nombre":      e.Nombre,
		"descripcion": e.Descripcion,
		"metadata":    e.Metadata,
		"imagen_url":  e.ImagenURL,
	}
}
