package internal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type gatewayCall struct {
	endpoint  string
	method    string
	payload   map[string]any
	multipart bool
	fields    map[string]string
	file      *FileAttachment
}

// fakeGateway serves canned JSON responses per endpoint and records every
// call. Responses queue in order; an endpoint with no queued response gets
// {"ok":true}. onCall, when set, runs after each call completes, outside any
// lock, so tests can race state changes against an in-flight request.
type fakeGateway struct {
	mu        sync.Mutex
	calls     []gatewayCall
	responses map[string][]string
	errs      map[string]error
	onCall    func(endpoint string)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		responses: make(map[string][]string),
		errs:      make(map[string]error),
	}
}

func (g *fakeGateway) respond(endpoint string, raw ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[endpoint] = append(g.responses[endpoint], raw...)
}

func (g *fakeGateway) fail(endpoint string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[endpoint] = err
}

func (g *fakeGateway) next(endpoint string) (*Envelope, error) {
	if err := g.errs[endpoint]; err != nil {
		return nil, err
	}
	raw := `{"ok":true}`
	if queue := g.responses[endpoint]; len(queue) > 0 {
		raw = queue[0]
		g.responses[endpoint] = queue[1:]
	}
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (g *fakeGateway) Call(ctx context.Context, endpoint, method string, payload map[string]any, sess *Session) (*Envelope, error) {
	g.mu.Lock()
	g.calls = append(g.calls, gatewayCall{endpoint: endpoint, method: method, payload: payload})
	hook := g.onCall
	env, err := g.next(endpoint)
	g.mu.Unlock()
	if hook != nil {
		hook(endpoint)
	}
	return env, err
}

func (g *fakeGateway) CallMultipart(ctx context.Context, endpoint string, fields map[string]string, file *FileAttachment, sess *Session) (*Envelope, error) {
	g.mu.Lock()
	g.calls = append(g.calls, gatewayCall{endpoint: endpoint, multipart: true, fields: fields, file: file})
	hook := g.onCall
	env, err := g.next(endpoint)
	g.mu.Unlock()
	if hook != nil {
		hook(endpoint)
	}
	return env, err
}

func (g *fakeGateway) callsTo(endpoint string) []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []gatewayCall
	for _, call := range g.calls {
		if call.endpoint == endpoint {
			out = append(out, call)
		}
	}
	return out
}

func (g *fakeGateway) lastCall(t *testing.T) gatewayCall {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.calls) == 0 {
		t.Fatal("no gateway calls recorded")
	}
	return g.calls[len(g.calls)-1]
}

func newEnfoquesFixture() (*EnfoquesClient, *fakeGateway) {
	gw := newFakeGateway()
	sess := &Session{IDSesion: "tok", IsAdmin: true, IDTerapeuta: 1}
	client := NewEnfoquesClient(gw, sess, NewMemoryKV(), &Config{})
	return client, gw
}

const enfoquesListing = `{"rows":[{"status":"ok","data":{"enfoques":[
	{"id_enfoque":1,"nombre":"Uno"},
	{"id_enfoque":2,"nombre":"Dos"}
]}}]}`

func TestCatalogListReplacesRecords(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar, enfoquesListing)

	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	records := client.Records()
	if len(records) != 2 || records[0].ID != 1 || records[1].ID != 2 {
		t.Fatalf("Records() = %v, want ids [1 2]", records)
	}

	call := gw.lastCall(t)
	if call.endpoint != EndpointEnfoquesListar {
		t.Errorf("endpoint = %q", call.endpoint)
	}
	if call.payload["pagina"] != 1 || call.payload["por_pagina"] != 50 || call.payload["solo_activos"] != true {
		t.Errorf("listing payload = %v", call.payload)
	}
}

func TestCatalogListNilSessionIsNoOp(t *testing.T) {
	gw := newFakeGateway()
	client := NewEnfoquesClient(gw, nil, NewMemoryKV(), &Config{})

	if err := client.List(context.Background(), ListOptions{}); err != nil {
		t.Fatalf("List() with nil session should be a no-op, got %v", err)
	}
	if len(gw.callsTo(EndpointEnfoquesListar)) != 0 {
		t.Error("nil session must not reach the gateway")
	}
}

func TestCatalogListAfterCloseIsNoOp(t *testing.T) {
	client, gw := newEnfoquesFixture()
	client.Close()

	if err := client.List(context.Background(), ListOptions{}); err != nil {
		t.Fatalf("List() after Close should be a no-op, got %v", err)
	}
	if len(gw.callsTo(EndpointEnfoquesListar)) != 0 {
		t.Error("closed client must not reach the gateway")
	}
}

func TestCatalogCreateSelectsAndCaches(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoqueCrear,
		`{"rows":[{"status":"ok","data":{"enfoque":{"id_enfoque":9,"nombre":"Ansiedad"}}}]}`)

	_, rec, err := client.Create(context.Background(), CatalogDraft{
		Fields: map[string]any{"nombre": "Ansiedad", "descripcion": "Manejo de ansiedad"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.ID != 9 || rec.Nombre != "Ansiedad" {
		t.Fatalf("Create() record = %+v, want id 9 nombre Ansiedad", rec)
	}

	records := client.Records()
	if len(records) == 0 || records[0].ID != 9 {
		t.Errorf("created record must be first in the list, got %v", records)
	}
	if sel, ok := client.Selection(); !ok || sel.ID != 9 {
		t.Errorf("created record must be selected, got %v %v", sel, ok)
	}
	if _, found := client.overlay.Entries()["9"]; !found {
		t.Error("created record must be in the overlay cache under its id")
	}
}

func TestCatalogCreateRequiresNombre(t *testing.T) {
	client, gw := newEnfoquesFixture()

	_, _, err := client.Create(context.Background(), CatalogDraft{
		Fields: map[string]any{"nombre": "   "},
	})
	var sessErr *SessionError
	if !errors.As(err, &sessErr) {
		t.Fatalf("Create() without nombre should be a SessionError, got %v", err)
	}
	if len(gw.callsTo(EndpointEnfoqueCrear)) != 0 {
		t.Error("invalid draft must not reach the gateway")
	}
}

func TestCatalogCreateRequiresSession(t *testing.T) {
	gw := newFakeGateway()
	client := NewEnfoquesClient(gw, nil, NewMemoryKV(), &Config{})

	_, _, err := client.Create(context.Background(), CatalogDraft{
		Fields: map[string]any{"nombre": "x"},
	})
	var sessErr *SessionError
	if !errors.As(err, &sessErr) {
		t.Fatalf("Create() without session should be a SessionError, got %v", err)
	}
}

func TestCatalogCreateUsesMultipartWithFile(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoqueCrearArchivo,
		`{"rows":[{"status":"ok","data":{"enfoque":{"id_enfoque":3,"nombre":"Con imagen"}}}]}`)

	file := &FileAttachment{Field: "archivo", Name: "img.png", ContentType: "image/png", Data: []byte{1, 2}}
	_, _, err := client.Create(context.Background(), CatalogDraft{
		Fields: map[string]any{"nombre": "Con imagen"},
		File:   file,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	call := gw.lastCall(t)
	if !call.multipart {
		t.Fatal("draft with a file must use the multipart variant")
	}
	if call.endpoint != EndpointEnfoqueCrearArchivo {
		t.Errorf("endpoint = %q, want %q", call.endpoint, EndpointEnfoqueCrearArchivo)
	}
	if call.fields["nombre"] != "Con imagen" {
		t.Errorf("multipart fields = %v", call.fields)
	}
	if call.file != file {
		t.Error("attachment must be forwarded as-is")
	}
}

func TestCatalogCreateBackendRejection(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoqueCrear, `{"rows":[{"status":"error","message":"Nombre duplicado"}]}`)

	_, _, err := client.Create(context.Background(), CatalogDraft{
		Fields: map[string]any{"nombre": "Repetido"},
	})
	if err == nil {
		t.Fatal("Create() should surface the backend rejection")
	}
	if client.Err() != "Nombre duplicado" {
		t.Errorf("Err() = %q, want backend message", client.Err())
	}
	if len(client.overlay.Entries()) != 0 {
		t.Error("rejected create must not touch the overlay")
	}
}

func TestCatalogUpdateSendsOnlyDiff(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar, enfoquesListing)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	_, err := client.Update(context.Background(), CatalogDraft{
		ID:       1,
		Original: map[string]any{"nombre": "Uno", "descripcion": ""},
		Fields:   map[string]any{"nombre": "Uno renombrado", "descripcion": ""},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	call := gw.lastCall(t)
	if call.endpoint != EndpointEnfoqueModificar {
		t.Fatalf("endpoint = %q", call.endpoint)
	}
	if len(call.payload) != 2 {
		t.Errorf("payload must carry only the diff plus the id, got %v", call.payload)
	}
	if call.payload["nombre"] != "Uno renombrado" || call.payload["id_enfoque"] != 1 {
		t.Errorf("payload = %v", call.payload)
	}

	records := client.Records()
	if records[0].Nombre != "Uno renombrado" {
		t.Errorf("in-memory record not updated: %+v", records[0])
	}
	if _, found := client.overlay.Entries()["1"]; !found {
		t.Error("updated record must be upserted into the overlay")
	}
}

func TestCatalogUpdateNoChangesIsNoOp(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar, enfoquesListing)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	same := map[string]any{"nombre": "Uno"}
	rec, err := client.Update(context.Background(), CatalogDraft{ID: 1, Original: same, Fields: same})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if rec == nil || rec.ID != 1 {
		t.Errorf("no-op update should return the current record, got %v", rec)
	}
	if len(gw.callsTo(EndpointEnfoqueModificar)) != 0 {
		t.Error("no-op update must not reach the gateway")
	}
}

func TestCatalogDeactivateKeepsInactiveOverlayEntry(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar,
		`{"rows":[{"status":"ok","data":{"enfoques":[{"id_enfoque":9,"nombre":"Ansiedad"}]}}]}`)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := client.Select(context.Background(), 9); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if err := client.Deactivate(context.Background(), 9); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	for _, rec := range client.Records() {
		if rec.ID == 9 {
			t.Error("deactivated record must leave the in-memory list")
		}
	}
	if _, ok := client.Selection(); ok {
		t.Error("selection must be cleared when its record is deactivated")
	}
	entry, found := client.overlay.Entries()["9"]
	if !found {
		t.Fatal("focus-areas must keep an inactive overlay entry after deactivation")
	}
	if entry.Record.Estatus != EstatusInactivo {
		t.Errorf("overlay entry Estatus = %q, want %q", entry.Record.Estatus, EstatusInactivo)
	}
}

func TestCatalogDeactivateFlagsUnlistedOverlayEntry(t *testing.T) {
	client, gw := newEnfoquesFixture()
	// Active overlay entry for a record the in-memory list has never seen
	// (another page, or deactivation before any listing).
	client.overlay.Upsert(&Enfoque{ID: 9, Nombre: "Ansiedad", Estatus: EstatusActivo})

	if err := client.Deactivate(context.Background(), 9); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	entry, found := client.overlay.Entries()["9"]
	if !found {
		t.Fatal("overlay entry must survive deactivation of an unlisted record")
	}
	if entry.Record.Estatus != EstatusInactivo {
		t.Errorf("overlay entry Estatus = %q, want %q", entry.Record.Estatus, EstatusInactivo)
	}

	gw.respond(EndpointEnfoquesListar, `{"rows":[{"status":"ok","data":{"enfoques":[]}}]}`)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, rec := range client.Records() {
		if rec.ID == 9 {
			t.Errorf("deactivated record reinjected into active-only listing: %+v", rec)
		}
	}
}

func TestProductosDeactivateDropsOverlayEntry(t *testing.T) {
	gw := newFakeGateway()
	sess := &Session{IDSesion: "tok", IsAdmin: true, IDTerapeuta: 1}
	client := NewProductosClient(gw, sess, NewMemoryKV(), &Config{})

	gw.respond(EndpointProductosListar,
		`{"rows":[{"status":"ok","data":{"productos":[{"id_producto":4,"nombre":"Sesión"}]}}]}`)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	client.overlay.Upsert(&Producto{ID: 4, Nombre: "Sesión", Estatus: EstatusActivo})

	if err := client.Deactivate(context.Background(), 4); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if _, found := client.overlay.Entries()["4"]; found {
		t.Error("products must drop the overlay entry on deactivation")
	}
}

func TestCatalogSelectionClearedWhenMissingFromListing(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar, enfoquesListing)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := client.Select(context.Background(), 1); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	gw.respond(EndpointEnfoquesListar,
		`{"rows":[{"status":"ok","data":{"enfoques":[{"id_enfoque":2,"nombre":"Dos"},{"id_enfoque":3,"nombre":"Tres"}]}}]}`)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if _, ok := client.Selection(); ok {
		t.Error("selection must be cleared when the new listing no longer contains it")
	}
}

func TestCatalogSelectHydratesFromDetail(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar, enfoquesListing)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	gw.respond(EndpointEnfoqueObtener,
		`{"rows":[{"status":"ok","data":{"enfoque":{"id_enfoque":1,"nombre":"Uno","descripcion":"Detalle completo"}}}]}`)
	sel, err := client.Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.Descripcion != "Detalle completo" {
		t.Errorf("selection not hydrated from the detail response: %+v", sel)
	}
	if records := client.Records(); records[0].Descripcion != "Detalle completo" {
		t.Error("detail fields must be folded back into the list record")
	}
}

func TestCatalogSelectFallsBackToListRecordOnDetailFailure(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar, enfoquesListing)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	gw.fail(EndpointEnfoqueObtener, &GatewayError{Endpoint: EndpointEnfoqueObtener, Op: "send"})
	sel, err := client.Select(context.Background(), 1)
	if err != nil {
		t.Fatalf("Select() must not fail on a detail fetch error, got %v", err)
	}
	if sel == nil || sel.ID != 1 || sel.Nombre != "Uno" {
		t.Errorf("selection should fall back to the list record, got %+v", sel)
	}
}

func TestCatalogStaleDetailFetchDiscarded(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar, enfoquesListing)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	gw.respond(EndpointEnfoqueObtener,
		`{"rows":[{"status":"ok","data":{"enfoque":{"id_enfoque":1,"nombre":"Hidratado"}}}]}`)
	// Selection moves on while the detail fetch is in flight.
	gw.onCall = func(endpoint string) {
		if endpoint == EndpointEnfoqueObtener {
			client.ClearSelection()
		}
	}

	if _, err := client.Select(context.Background(), 1); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, ok := client.Selection(); ok {
		t.Error("stale detail result must not resurrect a cleared selection")
	}
	if records := client.Records(); records[0].Nombre != "Uno" {
		t.Error("stale detail result must not be folded into the list")
	}
}

func TestCatalogListErrorClearsState(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar, enfoquesListing)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := client.Select(context.Background(), 1); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	gw.fail(EndpointEnfoquesListar, &GatewayError{Endpoint: EndpointEnfoquesListar, Op: "send"})
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err == nil {
		t.Fatal("List() should surface the gateway failure")
	}

	if len(client.Records()) != 0 {
		t.Error("failed listing must clear the in-memory list")
	}
	if _, ok := client.Selection(); ok {
		t.Error("failed listing must clear the selection")
	}
	if client.Err() == "" {
		t.Error("failed listing must capture an error message")
	}
}

func TestCatalogFiltered(t *testing.T) {
	client, gw := newEnfoquesFixture()
	gw.respond(EndpointEnfoquesListar,
		`{"rows":[{"status":"ok","data":{"enfoques":[
			{"id_enfoque":1,"nombre":"Ansiedad","descripcion":"Manejo"},
			{"id_enfoque":2,"nombre":"Depresión"}
		]}}]}`)
	if err := client.List(context.Background(), ListOptions{OnlyActive: true}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if got := client.Filtered("ANSIE"); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("Filtered(ANSIE) = %v, want the matching record", got)
	}
	if got := client.Filtered("manejo"); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("Filtered should match descriptions too, got %v", got)
	}
	if got := client.Filtered(""); len(got) != 2 {
		t.Errorf("Filtered(\"\") = %d records, want the full list", len(got))
	}
	if got := client.Filtered("nada"); len(got) != 0 {
		t.Errorf("Filtered(nada) = %v, want empty", got)
	}
}

func TestExtractListRowsShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{
			name: "nested under row data",
			raw:  `{"rows":[{"data":{"enfoques":[{"id_enfoque":1},{"id_enfoque":2}]}}]}`,
			want: 2,
		},
		{
			name: "directly on the row",
			raw:  `{"rows":[{"enfoques":[{"id_enfoque":1}]}]}`,
			want: 1,
		},
		{
			name: "rows themselves are the records",
			raw:  `{"rows":[{"id_enfoque":1},{"id_enfoque":2},{"id_enfoque":3}]}`,
			want: 3,
		},
		{
			name: "no rows",
			raw:  `{"ok":true}`,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := extractListRows(envelopeFromJSON(t, tt.raw), "enfoques")
			if len(rows) != tt.want {
				t.Errorf("extractListRows() = %d rows, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestExtractEntityShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "nested under row data", raw: `{"rows":[{"data":{"enfoque":{"id_enfoque":1}}}]}`, want: true},
		{name: "directly on the row", raw: `{"rows":[{"enfoque":{"id_enfoque":1}}]}`, want: true},
		{name: "top-level unwrapped", raw: `{"enfoque":{"id_enfoque":1}}`, want: true},
		{name: "absent", raw: `{"ok":true}`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity := extractEntity(envelopeFromJSON(t, tt.raw), "enfoque")
			if (entity != nil) != tt.want {
				t.Errorf("extractEntity() = %v, want present=%v", entity, tt.want)
			}
		})
	}
	if extractEntity(nil, "enfoque") != nil {
		t.Error("extractEntity(nil) should be nil")
	}
}

func TestStringifyFields(t *testing.T) {
	fields := stringifyFields(map[string]any{
		"nombre":   "x",
		"metadata": map[string]any{"a": 1},
		"precio":   nil,
	})
	if fields["nombre"] != "x" {
		t.Errorf("nombre = %q", fields["nombre"])
	}
	if fields["metadata"] != `{"a":1}` {
		t.Errorf("metadata = %q, want JSON encoding", fields["metadata"])
	}
	if fields["precio"] != "" {
		t.Errorf("nil value should become empty string, got %q", fields["precio"])
	}
}
