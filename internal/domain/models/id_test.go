package models

import (
	"encoding/json"
	"testing"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`42`, "42"},
		{`"42"`, "42"},
		{`"6512f0c1a3"`, "6512f0c1a3"},
		{`null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got ID
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestID_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c,omitempty"`
	}{A: "7", B: "abc"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"a":7,"b":"abc"}` {
		t.Errorf("got %s", b)
	}
}

func TestSocietyAdmins_DecodeNumbers(t *testing.T) {
	var s Society
	if err := json.Unmarshal([]byte(`{"id":3,"name":"Green Park","admins":[1,2]}`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.ID != "3" {
		t.Errorf("ID = %q, want 3", s.ID)
	}
	if len(s.Admins) != 2 || s.Admins[0] != "1" || s.Admins[1] != "2" {
		t.Errorf("Admins = %v", s.Admins)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in    string
		want  Role
		known bool
	}{
		{"SuperAdmin", RoleSuperAdmin, true},
		{" department ", RoleDepartment, true},
		{"security", RoleSecurity, true},
		{"Janitor", Role("Janitor"), false},
		{"", Role(""), false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.known {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.known)
		}
	}
}

func TestVisitor_Locked(t *testing.T) {
	if !(Visitor{ApprovalStatus: ApprovalDenied}).Locked() {
		t.Error("denied visitor should be locked")
	}
	if (Visitor{ApprovalStatus: ApprovalPending}).Locked() {
		t.Error("pending visitor should not be locked")
	}
}
