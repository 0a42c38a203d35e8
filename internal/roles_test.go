package internal

import "testing"

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name       string
		sess       *Session
		wantRole   Role
		wantTarget int
	}{
		{
			name:       "nil session",
			sess:       nil,
			wantRole:   RoleNone,
			wantTarget: 0,
		},
		{
			name:       "therapist targets own id",
			sess:       &Session{IsTerapeuta: true, UserID: 7},
			wantRole:   RoleTerapeuta,
			wantTarget: 7,
		},
		{
			name:       "admin targets managed therapist",
			sess:       &Session{IsAdmin: true, IDTerapeuta: 42},
			wantRole:   RoleAdmin,
			wantTarget: 42,
		},
		{
			name:       "admin without managed therapist",
			sess:       &Session{IsAdmin: true},
			wantRole:   RoleAdmin,
			wantTarget: 0,
		},
		{
			name:       "super admin counts as admin",
			sess:       &Session{IsSuperAdmin: true, IDTerapeuta: 3},
			wantRole:   RoleAdmin,
			wantTarget: 3,
		},
		{
			name:       "accounter counts as admin",
			sess:       &Session{IsAccounter: true, IDTerapeuta: 5},
			wantRole:   RoleAdmin,
			wantTarget: 5,
		},
		{
			name:       "therapist flag wins over admin flags",
			sess:       &Session{IsTerapeuta: true, IsAdmin: true, UserID: 9, IDTerapeuta: 42},
			wantRole:   RoleTerapeuta,
			wantTarget: 9,
		},
		{
			name:       "no flags means no role",
			sess:       &Session{UserID: 11},
			wantRole:   RoleNone,
			wantTarget: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTarget(tt.sess)
			if got.Role != tt.wantRole {
				t.Errorf("ResolveTarget() role = %q, want %q", got.Role, tt.wantRole)
			}
			if got.TargetID != tt.wantTarget {
				t.Errorf("ResolveTarget() target = %d, want %d", got.TargetID, tt.wantTarget)
			}
		})
	}
}
