package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// profileFields is the fixed set of editable profile fields used for both
// dirty tracking and the save patch.
var profileFields = []string{
	"nombre", "apellidos", "email", "telefono", "sexo",
	"descripcion", "cedula", "especialidad", "tarifa",
}

// ProfileClient fetches, edits and saves a therapist profile, including a
// deferred photo upload. Edits are dirty-tracked against the snapshot
// captured on the last successful fetch.
type ProfileClient struct {
	mu       sync.Mutex
	gw       Gateway
	sess     *Session
	cacheDir string

	perfil   *Perfil
	snapshot map[string]string
	edits    map[string]string

	pendingPhoto *FileAttachment
	previewPath  string

	errMsg string
	closed bool
}

// NewProfileClient builds a profile client; cacheDir hosts the local photo
// preview files.
func NewProfileClient(gw Gateway, sess *Session, cacheDir string) *ProfileClient {
	return &ProfileClient{
		gw:       gw,
		sess:     sess,
		cacheDir: cacheDir,
		snapshot: make(map[string]string),
		edits:    make(map[string]string),
	}
}

// Perfil returns the last fetched profile, nil before the first fetch
func (c *ProfileClient) Perfil() *Perfil {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perfil
}

// Err returns the last captured error message, empty when none
func (c *ProfileClient) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// PreviewPath returns the local photo preview file, empty when none pending
func (c *ProfileClient) PreviewPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previewPath
}

// Close marks the client dead and revokes any pending preview file
func (c *ProfileClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.revokePreviewLocked()
}

// Fetch retrieves the profile of the resolved target therapist. For a
// therapist's own session a failed fetch falls back to a minimal profile
// derived from session fields, so the self-service screen is never empty.
func (c *ProfileClient) Fetch(ctx context.Context) (*Perfil, error) {
	res := ResolveTarget(c.sess)
	if res.Role == RoleNone {
		return nil, &SessionError{Reason: "Se requiere una sesión activa de terapeuta o administrador"}
	}
	if res.TargetID == 0 {
		return nil, &SessionError{Reason: "Selecciona primero el terapeuta a gestionar"}
	}

	env, err := c.gw.Call(ctx, EndpointPerfilObtener, http.MethodPost, map[string]any{"id_terapeuta": res.TargetID}, c.sess)

	var perfil *Perfil
	if err == nil {
		if outcome := NormalizeResponse(env, FallbackFetchErrorMsg); !outcome.OK {
			err = &BackendError{Endpoint: EndpointPerfilObtener, Message: outcome.Message}
		} else {
			perfil = MapPerfil(extractObtenerPayload(env))
			if perfil == nil {
				err = &BackendError{Endpoint: EndpointPerfilObtener, Message: FallbackFetchErrorMsg}
			}
		}
	}

	if err != nil {
		if res.Role == RoleTerapeuta {
			LogWarn("profile fetch failed, deriving minimal profile from session: %v", err)
			perfil = &Perfil{
				IDTerapeuta: res.TargetID,
				Nombre:      c.sess.Nombre,
				Email:       c.sess.Email,
				Telefono:    c.sess.Telefono,
			}
		} else {
			c.captureError(err)
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return perfil, nil
	}
	c.perfil = perfil
	c.snapshot = profileFieldValues(perfil)
	c.edits = profileFieldValues(perfil)
	c.errMsg = ""
	return perfil, nil
}

// SetField records an edit for one of the fixed profile fields
func (c *ProfileClient) SetField(field, value string) error {
	if !isProfileField(field) {
		return &SessionError{Reason: fmt.Sprintf("Campo de perfil desconocido: %q", field)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edits[field] = value
	return nil
}

// Field returns the current edit value for a field
func (c *ProfileClient) Field(field string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edits[field]
}

// IsDirty compares every profile field between the fetch snapshot and the
// current edit state. Values are compared after string coercion, so nil
// and "" count as equal.
func (c *ProfileClient) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, field := range profileFields {
		if c.snapshot[field] != c.edits[field] {
			return true
		}
	}
	return c.pendingPhoto != nil
}

// SetPhoto stages a photo for the next save. The file is copied to a local
// preview under the cache dir; selecting a new photo revokes the previous
// preview first. No backend call is made here.
func (c *ProfileClient) SetPhoto(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}

	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}
	preview := filepath.Join(c.cacheDir, "preview_"+uuid.NewString()+filepath.Ext(path))
	if err := os.WriteFile(preview, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write preview: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.revokePreviewLocked()
	c.previewPath = preview
	c.pendingPhoto = &FileAttachment{
		Field:       "foto",
		Name:        filepath.Base(path),
		ContentType: photoContentType(path),
		Data:        data,
	}
	return preview, nil
}

// ClearPhoto drops the pending photo and its preview
func (c *ProfileClient) ClearPhoto() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revokePreviewLocked()
	c.pendingPhoto = nil
}

// Save sends the current edit state. With a photo pending, the multipart
// update variant is used and the first absolute URL found anywhere in the
// response becomes the immediate photo URL; either way a full re-fetch
// follows for consistency. Without a photo, the plain JSON variant is used.
func (c *ProfileClient) Save(ctx context.Context) error {
	res := ResolveTarget(c.sess)
	if res.TargetID == 0 {
		err := &SessionError{Reason: "No fue posible determinar el terapeuta a modificar"}
		c.captureError(err)
		return err
	}

	c.mu.Lock()
	patch := c.buildPatchLocked(res.TargetID)
	photo := c.pendingPhoto
	c.mu.Unlock()

	var env *Envelope
	var err error
	endpoint := EndpointPerfilModificar
	if photo != nil {
		endpoint = EndpointPerfilModificarArchivo
		env, err = c.gw.CallMultipart(ctx, endpoint, stringifyFields(patch), photo, c.sess)
	} else {
		env, err = c.gw.Call(ctx, endpoint, http.MethodPost, patch, c.sess)
	}
	if err != nil {
		c.captureError(err)
		return err
	}
	if outcome := NormalizeResponse(env, FallbackErrorMessage); !outcome.OK {
		err := &BackendError{Endpoint: endpoint, Message: outcome.Message}
		c.captureError(err)
		return err
	}

	if photo != nil {
		c.mu.Lock()
		c.revokePreviewLocked()
		c.pendingPhoto = nil
		if url := findFirstURL(env.Raw); url != "" && c.perfil != nil {
			c.perfil.FotoURL = url
		}
		c.mu.Unlock()
	}

	// Re-fetch so the snapshot reflects whatever the backend actually stored.
	if _, err := c.Fetch(ctx); err != nil {
		LogWarn("profile re-fetch after save failed: %v", err)
	}
	return nil
}

// buildPatchLocked assembles the update payload from the edit state,
// normalizing the sex field to its fixed code and coercing the fee to a
// number or nil.
func (c *ProfileClient) buildPatchLocked(targetID int) map[string]any {
	patch := map[string]any{"id_terapeuta": targetID}
	for _, field := range profileFields {
		value := c.edits[field]
		switch field {
		case "sexo":
			patch[field] = normalizeSexo(value)
		case "tarifa":
			if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				patch[field] = f
			} else {
				patch[field] = nil
			}
		default:
			patch[field] = value
		}
	}
	return patch
}

func (c *ProfileClient) captureError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.errMsg = humanMessage(err, FallbackErrorMessage)
	}
}

// revokePreviewLocked removes the active preview file, if any. At most one
// preview exists at a time.
func (c *ProfileClient) revokePreviewLocked() {
	if c.previewPath == "" {
		return
	}
	if err := os.Remove(c.previewPath); err != nil && !os.IsNotExist(err) {
		LogDebug("failed to remove preview %s: %v", c.previewPath, err)
	}
	c.previewPath = ""
}

// profileFieldValues string-coerces a profile into the fixed field set
func profileFieldValues(p *Perfil) map[string]string {
	values := make(map[string]string, len(profileFields))
	for _, field := range profileFields {
		values[field] = ""
	}
	if p == nil {
		return values
	}
	values["nombre"] = p.Nombre
	values["apellidos"] = p.Apellidos
	values["email"] = p.Email
	values["telefono"] = p.Telefono
	values["sexo"] = p.Sexo
	values["descripcion"] = p.Descripcion
	values["cedula"] = p.Cedula
	values["especialidad"] = p.Especialidad
	if p.Tarifa != nil {
		values["tarifa"] = strconv.FormatFloat(*p.Tarifa, 'f', -1, 64)
	}
	return values
}

func isProfileField(field string) bool {
	for _, f := range profileFields {
		if f == field {
			return true
		}
	}
	return false
}

// normalizeSexo maps free-form sex/gender input to the backend's fixed codes
func normalizeSexo(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "m", "masculino", "hombre", "male":
		return "M"
	case "f", "femenino", "mujer", "female":
		return "F"
	case "":
		return ""
	default:
		return "O"
	}
}

func photoContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// extractObtenerPayload locates the per-operation-named response field
// matching the api_usuario_*_obtener pattern. The backend names this field
// after the operation, so it is found by prefix/suffix match, probing the
// first row's data object first and the top-level document second. If the
// matched value wraps its content in a "data" object, that object is
// returned.
func extractObtenerPayload(env *Envelope) map[string]any {
	if env == nil {
		return nil
	}
	if row := env.FirstRow(); row != nil {
		if data, ok := row["data"].(map[string]any); ok {
			if payload := matchObtenerKey(data); payload != nil {
				return payload
			}
			// A data object that itself looks like the profile
			if _, hasID := data["id_terapeuta"]; hasID {
				return data
			}
		}
	}
	return matchObtenerKey(env.Raw)
}

func matchObtenerKey(doc map[string]any) map[string]any {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !strings.HasPrefix(key, "api_usuario_") || !strings.HasSuffix(key, "_obtener") {
			continue
		}
		payload, ok := doc[key].(map[string]any)
		if !ok {
			continue
		}
		if inner, ok := payload["data"].(map[string]any); ok {
			return inner
		}
		return payload
	}
	return nil
}

// findFirstURL scans the full response tree for the first absolute URL.
// Maps are walked in sorted key order so the result is deterministic.
func findFirstURL(v any) string {
	switch value := v.(type) {
	case string:
		if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
			return value
		}
	case map[string]any:
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if url := findFirstURL(value[key]); url != "" {
				return url
			}
		}
	case []any:
		for _, item := range value {
			if url := findFirstURL(item); url != "" {
				return url
			}
		}
	}
	return ""
}
