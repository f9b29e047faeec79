package home

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validDocument = `{
	"home_id": 421,
	"name": "Flat 3",
	"rooms": [
		{
			"name": "Living Room",
			"devices": [
				{"name": "Ceiling", "model": "ESP01_SHRGB1C_31", "id": "A1B2C3D4E5F6"},
				{"name": "Corner Lamp", "model": "ESP56_SHTW3_01", "ip": "192.168.1.51"}
			]
		},
		{
			"name": "Bedroom",
			"devices": [
				{"name": "Bedside", "id": "b2c3d4e5f6a1"}
			]
		}
	]
}`

func TestParseValidDocument(t *testing.T) {
	s, err := Parse([]byte(validDocument))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if s.HomeID != 421 || s.Name != "Flat 3" {
		t.Errorf("metadata = %d %q, want 421 \"Flat 3\"", s.HomeID, s.Name)
	}
	if len(s.Rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(s.Rooms))
	}
	if s.Rooms[0].Devices[0].ID != "a1b2c3d4e5f6" {
		t.Errorf("ID = %q, want lowercased identifier hint", s.Rooms[0].Devices[0].ID)
	}

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[2].Room != "Bedroom" || entries[2].Name != "Bedside" {
		t.Errorf("entry = %+v, want bedroom bedside", entries[2])
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{{nope`},
		{"missing rooms", `{"home_id": 1, "name": "x"}`},
		{"rooms not a list", `{"rooms": {"Living Room": []}}`},
		{"room without name", `{"rooms": [{"devices": []}]}`},
		{"device without name", `{"rooms": [{"name": "A", "devices": [{"model": "ESP01"}]}]}`},
		{"bad identifier format", `{"rooms": [{"name": "A", "devices": [{"name": "x", "id": "not-a-mac"}]}]}`},
		{"unknown device field", `{"rooms": [{"name": "A", "devices": [{"name": "x", "brightness": 50}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); !errors.Is(err, ErrInvalidStructure) {
				t.Errorf("Parse err = %v, want ErrInvalidStructure", err)
			}
		})
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home_structure.json")
	if err := os.WriteFile(path, []byte(validDocument), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Entries()) != 3 {
		t.Errorf("got %d entries, want 3", len(s.Entries()))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load on a missing file should fail")
	}
}
