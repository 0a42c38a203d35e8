package internal

// Role is the acting role derived from session flags
type Role string

const (
	RoleNone      Role = ""
	RoleTerapeuta Role = "terapeuta"
	RoleAdmin     Role = "admin"
)

// TargetResolution pairs the acting role with the therapist entity id the
// profile/schedule operations must act on. A zero TargetID means the target
// could not be resolved; callers must surface a guidance error instead of
// defaulting to another id.
type TargetResolution struct {
	Role     Role
	TargetID int
}

// ResolveTarget determines the acting role and target therapist from a
// session. A therapist session always targets its own actor id; an
// admin-like session targets the managed therapist, which may be absent.
//
// Pure function of the session value. It must be recomputed whenever the
// session changes; do not memoize the result across sessions.
func ResolveTarget(sess *Session) TargetResolution {
	if sess == nil {
		return TargetResolution{Role: RoleNone}
	}

	if sess.IsTerapeuta {
		return TargetResolution{Role: RoleTerapeuta, TargetID: sess.UserID}
	}

	if sess.IsAdmin || sess.IsSuperAdmin || sess.IsAccounter {
		return TargetResolution{Role: RoleAdmin, TargetID: sess.IDTerapeuta}
	}

	return TargetResolution{Role: RoleNone}
}
