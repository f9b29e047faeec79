package home

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Load reads and validates a structure document from disk.
func Load(path string) (*Structure, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading structure document %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates raw document bytes against the embedded schema and
// decodes them. Validation failures reject the whole document with
// ErrInvalidStructure; nothing is partially applied.
func Parse(raw []byte) (*Structure, error) {
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var s Structure
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStructure, err)
	}

	// Identifier hints are matched case-insensitively against directory
	// keys, which are lowercase.
	for ri := range s.Rooms {
		for di := range s.Rooms[ri].Devices {
			s.Rooms[ri].Devices[di].ID = strings.ToLower(s.Rooms[ri].Devices[di].ID)
		}
	}

	return &s, nil
}
