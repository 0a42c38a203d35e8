package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// CatalogDescriptor wires one entity kind (focus-areas, products) into the
// shared catalog client: its endpoints, payload keys, mappers and patch
// behavior.
type CatalogDescriptor[T CatalogRecord] struct {
	Kind      string
	IDParam   string // backend id field, e.g. "id_enfoque"
	EntityKey string // detail payload key, e.g. "enfoque"
	ListKey   string // listing array key, e.g. "enfoques"

	ListEndpoint       string
	DetailEndpoint     string
	CreateEndpoint     string
	CreateFileEndpoint string
	UpdateEndpoint     string
	UpdateFileEndpoint string
	DeactivateEndpoint string

	MapDetail  func(map[string]any) T
	MapListRow func(map[string]any) T

	PatchFields []string

	// ApplyFields shallow-merges backend field values into an existing
	// record, leaving client-only fields untouched.
	ApplyFields func(T, map[string]any)
	SetInactive func(T)

	// RemoveOnDeactivate drops the overlay entry instead of keeping an
	// inactive-flagged one, so the record can never be reinjected.
	RemoveOnDeactivate bool
}

// CatalogClient exposes list/select/create/update/deactivate operations and
// the derived state (merged list, filtered list, selection, error) for one
// catalog entity kind. Safe for concurrent use; listing calls are not
// coalesced — last resolved wins, each fully replacing the in-memory list.
type CatalogClient[T CatalogRecord] struct {
	mu      sync.Mutex
	gw      Gateway
	sess    *Session
	desc    CatalogDescriptor[T]
	overlay *OverlayCache[T]

	records     []T
	selectedID  int
	selected    T
	detailEpoch uint64
	loading     bool
	errMsg      string
	closed      bool
}

// NewCatalogClient builds a client from its parts
func NewCatalogClient[T CatalogRecord](gw Gateway, sess *Session, desc CatalogDescriptor[T], overlay *OverlayCache[T]) *CatalogClient[T] {
	return &CatalogClient[T]{gw: gw, sess: sess, desc: desc, overlay: overlay}
}

// Records returns a copy of the current merged list
func (c *CatalogClient[T]) Records() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out
}

// Filtered returns records whose searchable text contains query,
// case-insensitively. An empty query returns the full list.
func (c *CatalogClient[T]) Filtered(query string) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]T, len(c.records))
		copy(out, c.records)
		return out
	}

	var out []T
	for _, rec := range c.records {
		if strings.Contains(strings.ToLower(rec.SearchText()), query) {
			out = append(out, rec)
		}
	}
	return out
}

// Selection returns the selected record, if any
func (c *CatalogClient[T]) Selection() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedID == 0 {
		var zero T
		return zero, false
	}
	return c.selected, true
}

// Err returns the last captured error message, empty when none
func (c *CatalogClient[T]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Loading reports whether a listing call is in flight
func (c *CatalogClient[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Close marks the client dead; in-flight completions will not touch state
func (c *CatalogClient[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// List fetches a listing page, merges it with the overlay cache and
// replaces the in-memory state. Requires an active session; a nil session
// is a no-op. Errors are captured in state and also returned, so a failed
// background refresh never has to crash the caller.
func (c *CatalogClient[T]) List(ctx context.Context, opts ListOptions) error {
	c.mu.Lock()
	if c.closed || c.sess == nil {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	payload := map[string]any{
		"pagina":       opts.Page,
		"por_pagina":   opts.PageSize,
		"solo_activos": opts.OnlyActive,
	}

	env, err := c.gw.Call(ctx, c.desc.ListEndpoint, http.MethodPost, payload, c.sess)
	if err == nil {
		if outcome := NormalizeResponse(env, FallbackListErrorMsg); !outcome.OK {
			err = &BackendError{Endpoint: c.desc.ListEndpoint, Message: outcome.Message}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.closed {
		return nil
	}

	if err != nil {
		c.errMsg = humanMessage(err, FallbackListErrorMsg)
		c.records = nil
		c.clearSelectionLocked()
		return err
	}

	var mapped []T
	for _, raw := range extractListRows(env, c.desc.ListKey) {
		if rec := c.desc.MapListRow(raw); rec.RecordID() != 0 {
			mapped = append(mapped, rec)
		}
	}

	merged := c.overlay.MergeWithListing(mapped, opts.OnlyActive)
	c.overlay.EvictConfirmed(mapped)
	c.records = merged

	// Re-validate the selection against the new list; never reassign it
	// to an arbitrary surviving record.
	if c.selectedID != 0 {
		if rec, found := c.findLocked(c.selectedID); found {
			c.selected = rec
		} else {
			c.clearSelectionLocked()
		}
	}
	return nil
}

// Select marks id as the selected record and performs the secondary detail
// fetch that hydrates fields the list response omits. If the selection
// changes again while the fetch is in flight, the stale result is
// discarded. A failed detail fetch falls back to the list-derived record.
func (c *CatalogClient[T]) Select(ctx context.Context, id int) (T, error) {
	var zero T
	if id == 0 {
		return zero, &SessionError{Reason: "Se requiere un identificador para seleccionar"}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, nil
	}
	rec, found := c.findLocked(id)
	if !found {
		c.mu.Unlock()
		return zero, &SessionError{Reason: fmt.Sprintf("El registro %d no está en el listado", id)}
	}
	c.selectedID = id
	c.selected = rec
	c.detailEpoch++
	epoch := c.detailEpoch
	c.mu.Unlock()

	env, err := c.gw.Call(ctx, c.desc.DetailEndpoint, http.MethodPost, map[string]any{c.desc.IDParam: id}, c.sess)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.detailEpoch || c.selectedID != id {
		// Selection moved on while we were fetching; drop this result.
		return c.selected, nil
	}

	if err != nil {
		LogDebug("catalog %s: detail fetch for %d failed, keeping list record: %v", c.desc.Kind, id, err)
		return c.selected, nil
	}
	if outcome := NormalizeResponse(env, FallbackFetchErrorMsg); !outcome.OK {
		LogDebug("catalog %s: detail fetch for %d rejected: %s", c.desc.Kind, id, outcome.Message)
		return c.selected, nil
	}

	detail := c.desc.MapDetail(extractEntity(env, c.desc.EntityKey))
	if detail.RecordID() == id {
		c.selected = detail
		c.replaceLocked(detail)
	}
	return c.selected, nil
}

// ClearSelection drops the current selection
func (c *CatalogClient[T]) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSelectionLocked()
	c.detailEpoch++
}

// Create submits a new entity. The multipart variant is used exactly when
// the draft carries a pending file. On confirmed success the mapped record
// is upserted into the overlay, prepended to the list and selected.
// Returns both the raw envelope and the mapped record.
func (c *CatalogClient[T]) Create(ctx context.Context, draft CatalogDraft) (*Envelope, T, error) {
	var zero T
	if c.sess == nil {
		return nil, zero, &SessionError{Reason: "Se requiere una sesión activa"}
	}
	nombre, _ := draft.Fields["nombre"].(string)
	if strings.TrimSpace(nombre) == "" {
		return nil, zero, &SessionError{Reason: "El nombre es obligatorio"}
	}

	env, err := c.submit(ctx, c.desc.CreateEndpoint, c.desc.CreateFileEndpoint, draft.Fields, draft.File)
	if err != nil {
		c.captureError(err)
		return nil, zero, err
	}

	mapped := c.desc.MapDetail(extractEntity(env, c.desc.EntityKey))
	if mapped.RecordID() == 0 {
		return env, zero, nil
	}

	c.overlay.Upsert(mapped)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return env, mapped, nil
	}
	c.prependLocked(mapped)
	c.selectedID = mapped.RecordID()
	c.selected = mapped
	return env, mapped, nil
}

// Update sends a partial patch containing only the fields that changed
// relative to the draft's original snapshot. On success the returned fields
// are shallow-merged into the matching in-memory record and the overlay is
// updated. A draft with no changes and no pending file is a no-op.
func (c *CatalogClient[T]) Update(ctx context.Context, draft CatalogDraft) (T, error) {
	var zero T
	if c.sess == nil {
		return zero, &SessionError{Reason: "Se requiere una sesión activa"}
	}
	if draft.ID == 0 {
		return zero, &SessionError{Reason: "Se requiere el identificador del registro a modificar"}
	}

	patch := BuildPatch(draft.Original, draft.Fields, c.desc.PatchFields)
	if len(patch) == 0 && draft.File == nil {
		c.mu.Lock()
		rec, _ := c.findLocked(draft.ID)
		c.mu.Unlock()
		return rec, nil
	}

	payload := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		payload[k] = v
	}
	payload[c.desc.IDParam] = draft.ID

	env, err := c.submit(ctx, c.desc.UpdateEndpoint, c.desc.UpdateFileEndpoint, payload, draft.File)
	if err != nil {
		c.captureError(err)
		return zero, err
	}

	returned := extractEntity(env, c.desc.EntityKey)

	c.mu.Lock()
	rec, found := c.findLocked(draft.ID)
	if found {
		c.desc.ApplyFields(rec, patch)
		if returned != nil {
			c.desc.ApplyFields(rec, returned)
		}
		if c.selectedID == draft.ID {
			c.selected = rec
		}
	}
	c.mu.Unlock()

	if !found {
		if rec = c.desc.MapDetail(returned); rec.RecordID() == 0 {
			return zero, nil
		}
	}
	c.overlay.Upsert(rec)
	return rec, nil
}

// Deactivate soft-deletes an entity. On confirmed success the record leaves
// the in-memory active list and the selection is cleared if it pointed at
// it. Depending on the kind, the overlay either keeps an inactive-flagged
// entry (so active-only listings suppress reinjection while an audit trail
// remains) or drops the entry entirely.
func (c *CatalogClient[T]) Deactivate(ctx context.Context, id int) error {
	if c.sess == nil {
		return &SessionError{Reason: "Se requiere una sesión activa"}
	}
	if id == 0 {
		return &SessionError{Reason: "Se requiere el identificador del registro a desactivar"}
	}

	env, err := c.gw.Call(ctx, c.desc.DeactivateEndpoint, http.MethodPost, map[string]any{c.desc.IDParam: id}, c.sess)
	if err != nil {
		c.captureError(err)
		return err
	}
	if outcome := NormalizeResponse(env, FallbackErrorMessage); !outcome.OK {
		err := &BackendError{Endpoint: c.desc.DeactivateEndpoint, Message: outcome.Message}
		c.captureError(err)
		return err
	}

	c.mu.Lock()
	rec, found := c.findLocked(id)
	if found {
		c.desc.SetInactive(rec)
		c.removeLocked(id)
	}
	if c.selectedID == id {
		c.clearSelectionLocked()
	}
	c.mu.Unlock()

	if c.desc.RemoveOnDeactivate {
		c.overlay.Remove(id)
		return nil
	}
	if !found {
		// The record may live only in the overlay (another page, or no
		// listing performed yet); flag that entry too, or an active-only
		// merge would reinject the deactivated record.
		if cached, ok := c.overlay.Get(id); ok {
			c.desc.SetInactive(cached)
			rec, found = cached, true
		}
	}
	if found {
		c.overlay.Upsert(rec)
	}
	return nil
}

// submit routes a mutation through the JSON or multipart endpoint variant,
// chosen solely by the presence of a pending file, and asserts the
// normalized success signal.
func (c *CatalogClient[T]) submit(ctx context.Context, jsonEndpoint, fileEndpoint string, payload map[string]any, file *FileAttachment) (*Envelope, error) {
	var env *Envelope
	var err error
	endpoint := jsonEndpoint
	if file != nil {
		endpoint = fileEndpoint
		env, err = c.gw.CallMultipart(ctx, endpoint, stringifyFields(payload), file, c.sess)
	} else {
		env, err = c.gw.Call(ctx, endpoint, http.MethodPost, payload, c.sess)
	}
	if err != nil {
		return nil, err
	}
	if outcome := NormalizeResponse(env, FallbackErrorMessage); !outcome.OK {
		return nil, &BackendError{Endpoint: endpoint, Message: outcome.Message}
	}
	return env, nil
}

func (c *CatalogClient[T]) captureError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.errMsg = humanMessage(err, FallbackErrorMessage)
	}
}

func (c *CatalogClient[T]) findLocked(id int) (T, bool) {
	for _, rec := range c.records {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

func (c *CatalogClient[T]) replaceLocked(rec T) {
	for i, existing := range c.records {
		if existing.RecordID() == rec.RecordID() {
			c.records[i] = rec
			return
		}
	}
}

func (c *CatalogClient[T]) prependLocked(rec T) {
	filtered := make([]T, 0, len(c.records)+1)
	filtered = append(filtered, rec)
	for _, existing := range c.records {
		if existing.RecordID() != rec.RecordID() {
			filtered = append(filtered, existing)
		}
	}
	c.records = filtered
}

func (c *CatalogClient[T]) removeLocked(id int) {
	filtered := c.records[:0]
	for _, rec := range c.records {
		if rec.RecordID() != id {
			filtered = append(filtered, rec)
		}
	}
	c.records = filtered
}

func (c *CatalogClient[T]) clearSelectionLocked() {
	var zero T
	c.selectedID = 0
	c.selected = zero
}

// extractListRows probes the known listing envelope shapes in priority
// order: rows[0].data.<listKey> array, rows[0].<listKey> array, the rows
// themselves. Defaults to nil when nothing matches.
func extractListRows(env *Envelope, listKey string) []map[string]any {
	row := env.FirstRow()
	if row == nil {
		return nil
	}
	if data, ok := row["data"].(map[string]any); ok {
		if rows := toRowMaps(data[listKey]); rows != nil {
			return rows
		}
	}
	if rows := toRowMaps(row[listKey]); rows != nil {
		return rows
	}
	return env.Rows
}

// extractEntity locates the entity object of a detail/create/update
// response: rows[0].data.<entityKey>, rows[0].<entityKey>, or the top-level
// <entityKey> for unwrapped responses. Nil when absent.
func extractEntity(env *Envelope, entityKey string) map[string]any {
	if env == nil {
		return nil
	}
	if row := env.FirstRow(); row != nil {
		if data, ok := row["data"].(map[string]any); ok {
			if entity, ok := data[entityKey].(map[string]any); ok {
				return entity
			}
		}
		if entity, ok := row[entityKey].(map[string]any); ok {
			return entity
		}
	}
	if entity, ok := env.Raw[entityKey].(map[string]any); ok {
		return entity
	}
	return nil
}

func toRowMaps(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, isMap := item.(map[string]any); isMap {
			rows = append(rows, m)
		}
	}
	return rows
}

// stringifyFields flattens a JSON payload into multipart form fields
func stringifyFields(payload map[string]any) map[string]string {
	fields := make(map[string]string, len(payload))
	for k, v := range payload {
		switch s := v.(type) {
		case string:
			fields[k] = s
		case nil:
			fields[k] = ""
		default:
			if data, err := json.Marshal(v); err == nil {
				fields[k] = string(data)
			} else {
				fields[k] = fmt.Sprintf("%v", v)
			}
		}
	}
	return fields
}
