package models

// FieldError represents a single validation problem on a named input
// field. 400 responses carry these grouped per field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrorMap groups validation messages by field name, the shape
// clients receive in a 400 response body.
func FieldErrorMap(errs []FieldError) map[string][]string {
	out := make(map[string][]string, len(errs))
	for _, e := range errs {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}
