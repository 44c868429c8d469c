package models

import "testing"

func TestSyncProfile(t *testing.T) {
	t.Parallel()
	name := "Old Name"
	tests := []struct {
		name        string
		user        User
		email       string
		claimName   string
		wantChanged bool
		wantEmail   string
		wantName    *string
	}{
		{"no change", User{Email: "a@b.c", Name: &name}, "a@b.c", "Old Name", false, "a@b.c", &name},
		{"email updated", User{Email: "old@b.c", Name: &name}, "new@b.c", "Old Name", true, "new@b.c", &name},
		{"name set when unset", User{Email: "a@b.c"}, "a@b.c", "New Name", true, "a@b.c", strPtr("New Name")},
		{"name updated", User{Email: "a@b.c", Name: &name}, "a@b.c", "New Name", true, "a@b.c", strPtr("New Name")},
		{"empty name keeps stored", User{Email: "a@b.c", Name: &name}, "a@b.c", "", false, "a@b.c", &name},
		{"empty email keeps stored", User{Email: "a@b.c"}, "", "", false, "a@b.c", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := tt.user
			changed := u.SyncProfile(tt.email, tt.claimName)
			if changed != tt.wantChanged {
				t.Errorf("SyncProfile() = %v, want %v", changed, tt.wantChanged)
			}
			if u.Email != tt.wantEmail {
				t.Errorf("Email = %q, want %q", u.Email, tt.wantEmail)
			}
			switch {
			case tt.wantName == nil && u.Name != nil:
				t.Errorf("Name = %q, want nil", *u.Name)
			case tt.wantName != nil && (u.Name == nil || *u.Name != *tt.wantName):
				t.Errorf("Name = %v, want %q", u.Name, *tt.wantName)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
