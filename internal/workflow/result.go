package workflow

import "fmt"

// Result is the outcome of one node: either a payload or an error
// variant. A nil *Result means the slot was never written, which keeps
// the "first non-nil wins" reducer well-defined.
type Result struct {
	Data map[string]any `json:"data,omitempty"`
	Err  string         `json:"error,omitempty"`
}

// ResultOf wraps a collaborator response map. A non-empty "error" key
// marks the result as failed while keeping the payload (gate errors carry
// missing_fields alongside the error).
func ResultOf(data map[string]any) *Result {
	r := &Result{Data: data}
	if msg, ok := data["error"].(string); ok && msg != "" {
		r.Err = msg
	}
	return r
}

// Errorf builds a failed result with no payload.
func Errorf(format string, args ...any) *Result {
	return &Result{Err: fmt.Sprintf(format, args...)}
}

// Payload returns the raw data map, or nil for an unfilled slot.
func (r *Result) Payload() map[string]any {
	if r == nil {
		return nil
	}
	return r.Data
}

// OK reports whether the result carries a usable payload.
func (r *Result) OK() bool {
	return r != nil && r.Err == ""
}

// Str returns a string payload field, or "".
func (r *Result) Str(key string) string {
	if r == nil || r.Data == nil {
		return ""
	}
	s, _ := r.Data[key].(string)
	return s
}

// Float returns a numeric payload field, or the fallback.
func (r *Result) Float(key string, fallback float64) float64 {
	if r == nil || r.Data == nil {
		return fallback
	}
	switch v := r.Data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

// Bool returns a boolean payload field, or false.
func (r *Result) Bool(key string) bool {
	if r == nil || r.Data == nil {
		return false
	}
	b, _ := r.Data[key].(bool)
	return b
}

// Map returns a nested map payload field, or nil.
func (r *Result) Map(key string) map[string]any {
	if r == nil || r.Data == nil {
		return nil
	}
	m, _ := r.Data[key].(map[string]any)
	return m
}

// Strings returns a payload field as a string slice, tolerating []any.
func (r *Result) Strings(key string) []string {
	if r == nil || r.Data == nil {
		return nil
	}
	switch v := r.Data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
