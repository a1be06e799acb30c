package srs

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strings"
)

// Response represents the user's assessment of recall quality.
type Response int

const (
	Easy  Response = iota + 1 // Recalled effortlessly.
	Good                      // Recalled with some effort.
	Hard                      // Recalled with significant difficulty.
	Reset                     // Failed recall; collapses the interval back to one day.
)

var (
	responseNames  = [...]string{Easy: "Easy", Good: "Good", Hard: "Hard", Reset: "Reset"}
	responseByName = map[string]Response{
		"easy":  Easy,
		"good":  Good,
		"hard":  Hard,
		"reset": Reset,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Response(0)
	_ json.Marshaler           = Response(0)
	_ json.Unmarshaler         = (*Response)(nil)
	_ encoding.TextMarshaler   = Response(0)
	_ encoding.TextUnmarshaler = (*Response)(nil)
)

// ParseResponse converts a name to a Response, case-insensitively.
func ParseResponse(s string) (Response, error) {
	r, ok := responseByName[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidResponse, s)
	}
	return r, nil
}

// String returns the name of the response ("Easy", "Good", "Hard", "Reset").
// For invalid values it returns "Response(n)".
func (r Response) String() string {
	if r.IsValid() {
		return responseNames[r]
	}
	return fmt.Sprintf("Response(%d)", int(r))
}

// IsValid reports whether r is a valid response (Easy through Reset).
func (r Response) IsValid() bool {
	return r >= Easy && r <= Reset
}

// MarshalText implements encoding.TextMarshaler.
func (r Response) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResponse, int(r))
	}
	return []byte(responseNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Response) UnmarshalText(text []byte) error {
	v, err := ParseResponse(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// MarshalJSON implements json.Marshaler. Response serializes as a JSON string.
func (r Response) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (r *Response) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResponse, data)
	}
	return r.UnmarshalText([]byte(s))
}
