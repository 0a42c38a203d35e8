package internal

// ProductosClient manages the products catalog
type ProductosClient struct {
	*CatalogClient[*Producto]
}

// NewProductosClient builds the products client over the shared catalog
// core. Unlike focus-areas, a deactivated product is removed from the
// overlay outright so it can never be reinjected into a listing.
func NewProductosClient(gw Gateway, sess *Session, store KVStore, cfg *Config) *ProductosClient {
	overlay := NewOverlayCache[*Producto](OverlayKindProductos, store, cfg.OverlayMaxAge)
	desc := CatalogDescriptor[*Producto]{
		Kind:      OverlayKindProductos,
		IDParam:   "id_producto",
		EntityKey: "producto",
		ListKey:   "productos",

		ListEndpoint:       EndpointProductosListar,
		DetailEndpoint:     EndpointProductoObtener,
		CreateEndpoint:     EndpointProductoCrear,
		CreateFileEndpoint: EndpointProductoCrearArchivo,
		UpdateEndpoint:     EndpointProductoModificar,
		UpdateFileEndpoint: EndpointProductoModificarArchivo,
		DeactivateEndpoint: EndpointProductoDesactivar,

		MapDetail:  MapProducto,
		MapListRow: MapProductoListRow,

		PatchFields: ProductoPatchFields,

		ApplyFields: applyProductoFields,
		SetInactive: func(p *Producto) { p.Estatus = EstatusInactivo },

		RemoveOnDeactivate: true,
	}
	return &ProductosClient{NewCatalogClient(gw, sess, desc, overlay)}
}

// applyProductoFields shallow-merges backend field values into the record
func applyProductoFields(p *Producto, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "nombre":
			p.Nombre = rawString(fields, key, p.Nombre)
		case "descripcion":
			p.Descripcion = rawString(fields, key, p.Descripcion)
		case "precio":
			if f := rawFloat(fields, key); f != nil {
				p.Precio = f
			}
		case "metadata":
			if m, ok := value.(map[string]any); ok {
				p.Metadata = m
			}
		case "imagen_url":
			p.ImagenURL = rawString(fields, key, p.ImagenURL)
		case "estatus":
			p.Estatus = normalizeEstatus(rawString(fields, key, p.Estatus))
		case "version":
			p.Version = rawString(fields, key, p.Version)
		case "fecha_actualizacion":
			p.UpdatedAt = rawString(fields, key, p.UpdatedAt)
		}
	}
}

// PatchSnapshot exposes the patchable fields of a record as the original
// snapshot an update draft diffs against.
func (p *Producto) PatchSnapshot() map[string]any {
	return map[string]any{
		"nombre":      p.Nombre,
		"descripcion": p.Descripcion,
		"precio":      p.Precio,
		"metadata":    p.Metadata,
		"imagen_url":  p.ImagenURL,
	}
}
