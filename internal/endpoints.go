package internal

// Backend route constants. Paths are backend-defined and treated as opaque;
// the *_archivo variants accept multipart bodies when a file is attached.
const (
	EndpointEnfoquesListar          = "api/enfoque/listar"
	EndpointEnfoqueObtener          = "api/enfoque/obtener"
	EndpointEnfoqueCrear            = "api/enfoque/crear"
	EndpointEnfoqueCrearArchivo     = "api/enfoque/crear_archivo"
	EndpointEnfoqueModificar        = "api/enfoque/modificar"
	EndpointEnfoqueModificarArchivo = "api/enfoque/modificar_archivo"
	EndpointEnfoqueDesactivar       = "api/enfoque/desactivar"

	EndpointProductosListar          = "api/producto/listar"
	EndpointProductoObtener          = "api/producto/obtener"
	EndpointProductoCrear            = "api/producto/crear"
	EndpointProductoCrearArchivo     = "api/producto/crear_archivo"
	EndpointProductoModificar        = "api/producto/modificar"
	EndpointProductoModificarArchivo = "api/producto/modificar_archivo"
	EndpointProductoDesactivar       = "api/producto/desactivar"

	EndpointHorariosObtener   = "api/horario/obtener"
	EndpointHorarioCrear      = "api/horario/crear"
	EndpointHorarioDesactivar = "api/horario/desactivar"

	EndpointPerfilObtener          = "api/usuario/terapeuta_obtener"
	EndpointPerfilModificar        = "api/usuario/terapeuta_modificar"
	EndpointPerfilModificarArchivo = "api/usuario/terapeuta_modificar_archivo"
)
