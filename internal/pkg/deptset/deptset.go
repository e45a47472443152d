// Package deptset holds the department-set rules shared by jobs and messages:
// the fixed department list, write-side normalization to a single JSON
// encoding, and a tolerant read-side decoder feeding the visibility decision.
package deptset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

// All is the sentinel entry that makes a set visible to every department.
const All = "all"

// Known lists the departments a set may name.
var Known = []string{
	"Computer Science",
	"Information Technology",
	"Electronics and Communication",
	"Electrical Engineering",
	"Mechanical Engineering",
	"Civil Engineering",
}

// maxDecodeDepth bounds how many JSON string layers Decode will peel.
const maxDecodeDepth = 2

// Set is a normalized department set: either exactly {All} or a non-empty
// subset of Known.
type Set []string

// IsKnown reports whether name is one of the fixed departments.
func IsKnown(name string) bool {
	for _, d := range Known {
		if d == name {
			return true
		}
	}
	return false
}

// Normalize validates raw department names for storage. Blank entries are
// dropped, duplicates removed, and any occurrence of All collapses the set.
func Normalize(raw []string) (Set, error) {
	seen := make(map[string]struct{}, len(raw))
	set := make(Set, 0, len(raw))

	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, All) {
			return Set{All}, nil
		}
		if !IsKnown(name) {
			return nil, fmt.Errorf("%w: unknown department %q", apperrors.ErrInvalidDepartments, name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		set = append(set, name)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("%w: at least one department is required", apperrors.ErrInvalidDepartments)
	}
	return set, nil
}

// FromForm turns multipart form values into raw names. A value holding a
// JSON array (as sent by the admin UI) is expanded; anything else is taken
// literally.
func FromForm(values []string) []string {
	var out []string
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, `"`) {
			if decoded, ok := Decode(trimmed); ok {
				out = append(out, decoded...)
				continue
			}
		}
		out = append(out, strings.Split(trimmed, ",")...)
	}
	return out
}

// Encode produces the single JSON encoding stored in department columns.
func Encode(s Set) ([]byte, error) {
	if s == nil {
		s = Set{}
	}
	return json.Marshal([]string(s))
}

// Decode normalizes a stored department set of unreliable shape. It accepts
// a string slice, a generic slice of strings, JSON text as string or bytes,
// and JSON text that was encoded twice. ok is false when nothing usable
// could be recovered; Decode never panics.
func Decode(raw interface{}) (set Set, ok bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case Set:
		return append(Set(nil), v...), true
	case []string:
		return append(Set(nil), v...), true
	case []interface{}:
		out := make(Set, 0, len(v))
		for _, item := range v {
			s, isString := item.(string)
			if !isString {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		return decodeText([]byte(v))
	case []byte:
		return decodeText(v)
	case json.RawMessage:
		return decodeText(v)
	default:
		return nil, false
	}
}

func decodeText(b []byte) (Set, bool) {
	for depth := 0; depth < maxDecodeDepth; depth++ {
		var list []string
		if err := json.Unmarshal(b, &list); err == nil {
			return list, true
		}
		var inner string
		if err := json.Unmarshal(b, &inner); err != nil {
			return nil, false
		}
		b = []byte(inner)
	}
	return nil, false
}

// Contains reports whether the set grants visibility to department.
func (s Set) Contains(department string) bool {
	for _, d := range s {
		if d == All || d == department {
			return true
		}
	}
	return false
}

// Visible decides whether an item tagged with raw is shown to a student of
// department. Undecodable input is treated as an empty set and logged.
func Visible(raw interface{}, department string) bool {
	set, ok := Decode(raw)
	if !ok {
		logger.Warn().
			Str("department", department).
			Str("rawType", fmt.Sprintf("%T", raw)).
			Msg("Unreadable department set, treating as empty")
		return false
	}
	return set.Contains(department)
}
