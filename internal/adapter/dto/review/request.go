package review

// SetFieldRequest is one user edit intent for a single rating field.
// Value is a number for metric fields and a string for the
// ideal-response field; the store clamps metric values into range.
type SetFieldRequest struct {
	Field string      `json:"field" validate:"required,min=1,max=128"`
	Value interface{} `json:"value"`
}
