package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Session is the credential/capability bundle issued by the platform's
// authentication service. The client only reads it; it never mutates or
// refreshes it.
type Session struct {
	UserID       int    `yaml:"user_id" json:"user_id"`
	IDSesion     string `yaml:"id_sesion" json:"id_sesion"`
	IsTerapeuta  bool   `yaml:"is_terapeuta" json:"is_terapeuta"`
	IsAdmin      bool   `yaml:"is_admin" json:"is_admin"`
	IsSuperAdmin bool   `yaml:"is_super_admin" json:"is_super_admin"`
	IsAccounter  bool   `yaml:"is_accounter" json:"is_accounter"`

	// IDTerapeuta is the therapist currently managed by an admin session.
	// Zero means no managed therapist is selected.
	IDTerapeuta int `yaml:"id_terapeuta,omitempty" json:"id_terapeuta,omitempty"`

	// Last-resort profile fallback fields, used only when the profile
	// detail endpoint fails for a therapist's own session.
	Nombre   string `yaml:"nombre,omitempty" json:"nombre,omitempty"`
	Email    string `yaml:"email,omitempty" json:"email,omitempty"`
	Telefono string `yaml:"telefono,omitempty" json:"telefono,omitempty"`
}

// LoadSession reads a session credential file in YAML format
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	return &sess, nil
}
