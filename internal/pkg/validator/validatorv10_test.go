package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Identifier string `validate:"required,phone"`
	FirstName  string `validate:"required,max=50,personname"`
	Locale     string `validate:"omitempty,locale"`
	Code       string `validate:"omitempty,len=6,digits"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name       string
		in         sample
		wantFields []string
	}{
		{
			name: "valid",
			in:   sample{Identifier: "+6281234567890", FirstName: "Mary-Jane O'Neil", Locale: "en_US", Code: "004211"},
		},
		{
			name:       "bad phone",
			in:         sample{Identifier: "12ab", FirstName: "Ann"},
			wantFields: []string{"identifier"},
		},
		{
			name:       "bad name and locale",
			in:         sample{Identifier: "6281234567", FirstName: "R2D2", Locale: "english"},
			wantFields: []string{"first_name", "locale"},
		},
		{
			name:       "code with letters",
			in:         sample{Identifier: "6281234567", FirstName: "Ann", Code: "12a456"},
			wantFields: []string{"code"},
		},
		{
			name:       "missing required",
			in:         sample{},
			wantFields: []string{"identifier", "first_name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Values(), len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, verr.Values(), f)
			}
		})
	}
}

func TestV10Validator_CustomMessages(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	err = v.Validate(sample{Identifier: "x", FirstName: "Ann"})

	var verr V10ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Identifier must be a phone number with 8-15 digits", verr["identifier"])
	assert.Contains(t, verr.Error(), "identifier")
}

func TestFieldKey(t *testing.T) {
	tests := map[string]string{
		"Identifier":    "identifier",
		"FirstName":     "first_name",
		"CorrelationID": "correlation_id",
		"HTTPStatus":    "http_status",
		"Code2FA":       "code2_fa",
		"":              "",
	}

	for in, want := range tests {
		assert.Equal(t, want, fieldKey(in), in)
	}
}
