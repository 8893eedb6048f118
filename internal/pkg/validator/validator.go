package validator

// Validator validates structs tagged with `validate`.
type Validator interface {
	Validate(data any) error
}
