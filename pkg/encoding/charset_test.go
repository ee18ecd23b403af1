package encoding

import "testing"

func TestToUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii", "stone_wall", "stone_wall"},
		{"utf8 passthrough", "café", "café"},
		{"windows-1252", "caf\xe9", "café"},
		{"euro sign", "\x80uro", "€uro"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToUTF8(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFromUTF8(t *testing.T) {
	if got := FromUTF8("café"); got != "caf\xe9" {
		t.Errorf("expected %q, got %q", "caf\xe9", got)
	}
	if got := ToUTF8(FromUTF8("Mañana")); got != "Mañana" {
		t.Errorf("round trip failed: %q", got)
	}
}
