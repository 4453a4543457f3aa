// Package eval scores ultimate tic-tac-toe positions from two lookup tables:
// one keyed by sub-board encoding and one keyed by meta-board encoding.
package eval

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Errors returned while loading or checking tables.
var (
	ErrMalformedTable = errors.New("malformed score table")
	ErrBadEncoding    = errors.New("bad board encoding")
)

// Tables holds the two score tables. They are never mutated after
// construction and may be shared between searches.
type Tables struct {
	Sub   map[string]int
	Large map[string]int
}

// Load reads the sub-board and large-board tables from JSON objects mapping
// encodings to scores.
func Load(subPath, largePath string) (*Tables, error) {
	sub, err := readTable(subPath)
	if err != nil {
		return nil, err
	}
	large, err := readTable(largePath)
	if err != nil {
		return nil, err
	}
	t := &Tables{Sub: sub, Large: large}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func readTable(path string) (map[string]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read score table %s: %w", path, err)
	}
	var m map[string]int
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformedTable, path, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%w %s: empty", ErrMalformedTable, path)
	}
	return m, nil
}

// Validate checks that every key is a nine-value encoding of -1, 0 and 1.
func (t *Tables) Validate() error {
	for name, m := range map[string]map[string]int{"sub": t.Sub, "large": t.Large} {
		if len(m) == 0 {
			return fmt.Errorf("%w: %s table is empty", ErrMalformedTable, name)
		}
		for k := range m {
			if _, err := Decode(k); err != nil {
				return fmt.Errorf("%w: %s table: %v", ErrMalformedTable, name, err)
			}
		}
	}
	return nil
}

// Save writes both tables as JSON.
func Save(t *Tables, subPath, largePath string) error {
	if err := writeTable(subPath, t.Sub); err != nil {
		return err
	}
	return writeTable(largePath, t.Large)
}

func writeTable(path string, m map[string]int) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode score table %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write score table %s: %w", path, err)
	}
	return nil
}

// Encode joins nine cell identities the way domain boards do.
func Encode(cells [9]int) string {
	parts := make([]string, len(cells))
	for i, v := range cells {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Decode parses a table key back into cell identities.
func Decode(key string) ([9]int, error) {
	var cells [9]int
	parts := strings.Split(key, ",")
	if len(parts) != len(cells) {
		return cells, fmt.Errorf("%w: %q", ErrBadEncoding, key)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < -1 || v > 1 || strconv.Itoa(v) != p {
			return cells, fmt.Errorf("%w: %q", ErrBadEncoding, key)
		}
		cells[i] = v
	}
	return cells, nil
}
