package internal

import (
	"strconv"
	"strings"
)

// weekdayLabels maps the backend's 1-7 weekday codes to display labels
var weekdayLabels = map[int]string{
	1: "Lunes",
	2: "Martes",
	3: "Miércoles",
	4: "Jueves",
	5: "Viernes",
	6: "Sábado",
	7: "Domingo",
}

// WeekdayLabel returns the display label for a 1-7 weekday code
func WeekdayLabel(day int) string {
	if label, ok := weekdayLabels[day]; ok {
		return label
	}
	return ""
}

// rawString reads a string field with a default. Numeric values are
// stringified so the UI never sees undefined.
func rawString(raw map[string]any, key, def string) string {
	v, found := raw[key]
	if !found || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return def
}

// rawInt reads a numeric field tolerating JSON float64, int and string forms
func rawInt(raw map[string]any, key string) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// rawFloat reads an optional numeric field, nil when absent or unparseable
func rawFloat(raw map[string]any, key string) *float64 {
	switch v := raw[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}

// rawMap reads a nested object field, nil when absent
func rawMap(raw map[string]any, key string) map[string]any {
	if m, ok := raw[key].(map[string]any); ok {
		return m
	}
	return nil
}

// normalizeEstatus maps the backend's assorted status spellings to the two
// canonical labels.
func normalizeEstatus(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "inactivo", "inactive", "0", "false":
		return EstatusInactivo
	default:
		return EstatusActivo
	}
}

// MapEnfoque maps a detail-shape row to an Enfoque. Returns nil for nil input.
func MapEnfoque(raw map[string]any) *Enfoque {
	if raw == nil {
		return nil
	}
	return &Enfoque{
		ID:          rawInt(raw, "id_enfoque"),
		Nombre:      rawString(raw, "nombre", ""),
		Descripcion: rawString(raw, "descripcion", ""),
		Metadata:    rawMap(raw, "metadata"),
		ImagenURL:   rawString(raw, "imagen_url", ""),
		Estatus:     normalizeEstatus(rawString(raw, "estatus", EstatusActivo)),
		Version:     rawString(raw, "version", ""),
		CreatedAt:   rawString(raw, "fecha_creacion", ""),
		UpdatedAt:   rawString(raw, "fecha_actualizacion", ""),
	}
}

// MapEnfoqueListRow maps a narrow listing-shape row. List rows omit the
// status field; absent an explicit status the record is tagged active,
// since the backend only lists visible records.
func MapEnfoqueListRow(raw map[string]any) *Enfoque {
	e := MapEnfoque(raw)
	if e == nil {
		return nil
	}
	if _, hasStatus := raw["estatus"]; !hasStatus {
		e.Estatus = EstatusActivo
	}
	return e
}

// MapProducto maps a detail-shape row to a Producto. Returns nil for nil input.
func MapProducto(raw map[string]any) *Producto {
	if raw == nil {
		return nil
	}
	return &Producto{
		ID:          rawInt(raw, "id_producto"),
		Nombre:      rawString(raw, "nombre", ""),
		Descripcion: rawString(raw, "descripcion", ""),
		Precio:      rawFloat(raw, "precio"),
		Metadata:    rawMap(raw, "metadata"),
		ImagenURL:   rawString(raw, "imagen_url", ""),
		Estatus:     normalizeEstatus(rawString(raw, "estatus", EstatusActivo)),
		Version:     rawString(raw, "version", ""),
		CreatedAt:   rawString(raw, "fecha_creacion", ""),
		UpdatedAt:   rawString(raw, "fecha_actualizacion", ""),
	}
}

// MapProductoListRow maps a narrow listing-shape row; status-less rows are
// tagged active, like MapEnfoqueListRow.
func MapProductoListRow(raw map[string]any) *Producto {
	p := MapProducto(raw)
	if p == nil {
		return nil
	}
	if _, hasStatus := raw["estatus"]; !hasStatus {
		p.Estatus = EstatusActivo
	}
	return p
}

// truncateToMinute reduces "HH:MM:SS" to "HH:MM"
func truncateToMinute(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

// MapHorario maps a raw schedule row to a HorarioSlot. Returns nil for nil
// input. The original row is retained so deactivation can resolve the
// backend id from either shape.
func MapHorario(raw map[string]any) *HorarioSlot {
	if raw == nil {
		return nil
	}
	inicio := truncateToMinute(rawString(raw, "hora_inicio", ""))
	fin := truncateToMinute(rawString(raw, "hora_fin", ""))
	horario := ""
	if inicio != "" || fin != "" {
		horario = inicio + " - " + fin
	}
	dia := rawInt(raw, "dia_semana")
	return &HorarioSlot{
		ID:           rawInt(raw, "id_horario"),
		DiaSemana:    dia,
		DiaLabel:     WeekdayLabel(dia),
		Horario:      horario,
		HoraInicio:   inicio,
		HoraFin:      fin,
		TipoAtencion: rawString(raw, "tipo_atencion", ""),
		Canal:        rawString(raw, "canal", ""),
		Ubicacion:    rawString(raw, "ubicacion", ""),
		Metadata:     rawMap(raw, "metadata"),
		Raw:          raw,
	}
}

// MapPerfil maps a raw profile payload to a Perfil. Returns nil for nil input.
func MapPerfil(raw map[string]any) *Perfil {
	if raw == nil {
		return nil
	}
	return &Perfil{
		IDTerapeuta:  rawInt(raw, "id_terapeuta"),
		Nombre:       rawString(raw, "nombre", ""),
		Apellidos:    rawString(raw, "apellidos", ""),
		Email:        rawString(raw, "email", ""),
		Telefono:     rawString(raw, "telefono", ""),
		Sexo:         rawString(raw, "sexo", ""),
		Descripcion:  rawString(raw, "descripcion", ""),
		Cedula:       rawString(raw, "cedula", ""),
		Especialidad: rawString(raw, "especialidad", ""),
		Tarifa:       rawFloat(raw, "tarifa"),
		FotoURL:      rawString(raw, "foto_url", ""),
	}
}
