package internal

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"
)

var timeOfDayPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// ScheduleClient lists, creates and deactivates schedule slots for the
// therapist resolved from the session (the therapist themselves, or the
// one an admin is managing).
//
// Schedules carry no optimistic overlay: the backend is treated as
// immediately consistent for this entity kind, so every mutation triggers a
// full refresh instead of a local splice.
type ScheduleClient struct {
	mu     sync.Mutex
	gw     Gateway
	sess   *Session
	slots  []*HorarioSlot
	errMsg string
	closed bool
}

// NewScheduleClient builds a schedule client for the given session
func NewScheduleClient(gw Gateway, sess *Session) *ScheduleClient {
	return &ScheduleClient{gw: gw, sess: sess}
}

// Slots returns a copy of the current slot list
func (c *ScheduleClient) Slots() []*HorarioSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*HorarioSlot, len(c.slots))
	copy(out, c.slots)
	return out
}

// Err returns the last captured error message, empty when none
func (c *ScheduleClient) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Close marks the client dead; in-flight completions will not touch state
func (c *ScheduleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// target resolves the therapist every operation must act on. Resolution is
// recomputed from the session on every call; a missing target is an error,
// never a silent fallback to another id.
func (c *ScheduleClient) target() (int, error) {
	res := ResolveTarget(c.sess)
	switch {
	case res.Role == RoleNone:
		return 0, &SessionError{Reason: "Se requiere una sesión activa de terapeuta o administrador"}
	case res.TargetID == 0:
		return 0, &SessionError{Reason: "Selecciona primero el terapeuta a gestionar"}
	}
	return res.TargetID, nil
}

// Refresh fetches the slots for the resolved therapist, tolerating the
// known response envelope shapes, and replaces the in-memory list.
func (c *ScheduleClient) Refresh(ctx context.Context) error {
	targetID, err := c.target()
	if err != nil {
		c.captureError(err)
		return err
	}

	env, err := c.gw.Call(ctx, EndpointHorariosObtener, http.MethodPost, map[string]any{"id_terapeuta": targetID}, c.sess)
	if err == nil {
		if outcome := NormalizeResponse(env, FallbackListErrorMsg); !outcome.OK {
			err = &BackendError{Endpoint: EndpointHorariosObtener, Message: outcome.Message}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if err != nil {
		c.errMsg = humanMessage(err, FallbackListErrorMsg)
		return err
	}

	var slots []*HorarioSlot
	for _, raw := range extractHorarioRows(env) {
		if slot := MapHorario(raw); slot != nil {
			slots = append(slots, slot)
		}
	}
	c.slots = slots
	c.errMsg = ""
	return nil
}

// Create registers a new slot for the resolved therapist and refreshes the
// list on success.
func (c *ScheduleClient) Create(ctx context.Context, form HorarioForm) error {
	targetID, err := c.target()
	if err != nil {
		c.captureError(err)
		return err
	}
	if err := validateHorarioForm(form); err != nil {
		c.captureError(err)
		return err
	}

	payload := map[string]any{
		"id_terapeuta":  targetID,
		"dia_semana":    form.DiaSemana,
		"hora_inicio":   form.HoraInicio,
		"hora_fin":      form.HoraFin,
		"tipo_atencion": form.TipoAtencion,
		"canal":         form.Canal,
		"ubicacion":     form.Ubicacion,
		"metadata":      form.Metadata,
	}

	env, err := c.gw.Call(ctx, EndpointHorarioCrear, http.MethodPost, payload, c.sess)
	if err != nil {
		c.captureError(err)
		return err
	}
	if outcome := NormalizeResponse(env, FallbackErrorMessage); !outcome.OK {
		err := &BackendError{Endpoint: EndpointHorarioCrear, Message: outcome.Message}
		c.captureError(err)
		return err
	}

	return c.Refresh(ctx)
}

// Deactivate removes a slot, resolving the backend id from the slot's raw
// payload or its mapped id, and refreshes the list on success.
func (c *ScheduleClient) Deactivate(ctx context.Context, slot *HorarioSlot) error {
	if _, err := c.target(); err != nil {
		c.captureError(err)
		return err
	}

	id := 0
	if slot != nil {
		if slot.Raw != nil {
			id = rawInt(slot.Raw, "id_horario")
		}
		if id == 0 {
			id = slot.ID
		}
	}
	if id == 0 {
		err := &SessionError{Reason: "No fue posible determinar el horario a desactivar"}
		c.captureError(err)
		return err
	}

	env, err := c.gw.Call(ctx, EndpointHorarioDesactivar, http.MethodPost, map[string]any{"id_horario": id}, c.sess)
	if err != nil {
		c.captureError(err)
		return err
	}
	if outcome := NormalizeResponse(env, FallbackErrorMessage); !outcome.OK {
		err := &BackendError{Endpoint: EndpointHorarioDesactivar, Message: outcome.Message}
		c.captureError(err)
		return err
	}

	return c.Refresh(ctx)
}

func (c *ScheduleClient) captureError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.errMsg = humanMessage(err, FallbackErrorMessage)
	}
}

func validateHorarioForm(form HorarioForm) error {
	if form.DiaSemana < 1 || form.DiaSemana > 7 {
		return &SessionError{Reason: fmt.Sprintf("Día de la semana inválido: %d (se espera 1-7)", form.DiaSemana)}
	}
	if !timeOfDayPattern.MatchString(form.HoraInicio) {
		return &SessionError{Reason: fmt.Sprintf("Hora de inicio inválida: %q (se espera HH:MM)", form.HoraInicio)}
	}
	if !timeOfDayPattern.MatchString(form.HoraFin) {
		return &SessionError{Reason: fmt.Sprintf("Hora de fin inválida: %q (se espera HH:MM)", form.HoraFin)}
	}
	return nil
}

// extractHorarioRows probes the historically-observed slot listing shapes
// in fixed priority order: rows[0].data.horarios, rows[0].horarios, then
// the rows themselves as slot records. Empty when none match.
func extractHorarioRows(env *Envelope) []map[string]any {
	row := env.FirstRow()
	if row == nil {
		return nil
	}
	if data, ok := row["data"].(map[string]any); ok {
		if rows := toRowMaps(data["horarios"]); rows != nil {
			return rows
		}
	}
	if rows := toRowMaps(row["horarios"]); rows != nil {
		return rows
	}
	// Fallback shape: the rows themselves are the slots. Success envelopes
	// sometimes carry a bare status row; keep only rows that look like one.
	var rows []map[string]any
	for _, r := range env.Rows {
		if isHorarioRow(r) {
			rows = append(rows, r)
		}
	}
	return rows
}

// isHorarioRow reports whether a row resolves a slot id or carries any
// schedule field.
func isHorarioRow(row map[string]any) bool {
	if rawInt(row, "id_horario") != 0 {
		return true
	}
	for _, key := range []string{"dia_semana", "hora_inicio", "hora_fin"} {
		if _, found := row[key]; found {
			return true
		}
	}
	return false
}
