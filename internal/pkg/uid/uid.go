// Package uid generates identifiers: UUIDv7 strings for correlation ids and
// snowflake integers for database rows.
package uid

// StringID generates opaque string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates roughly time-ordered integer identifiers.
type NumberID interface {
	Generate() int64
}
