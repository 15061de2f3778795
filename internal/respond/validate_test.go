package respond

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=8"`
}

type passphrase struct {
	Secret string `json:"secret" validate:"required,maxbytes=8"`
}

func TestValidateMaxBytes(t *testing.T) {
	assert.Equal(t, "", Validate(passphrase{Secret: "abcdefgh"}))
	assert.Equal(t, "", Validate(passphrase{Secret: "éééé"}))
	assert.Equal(t, "secret: value is too long", Validate(passphrase{Secret: "ééééé"}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   credentials
		want string
	}{
		{"valid", credentials{Email: "a@b.io", Password: "pw"}, ""},
		{"missing email", credentials{Password: "pw"}, "email: this field is required"},
		{"bad email", credentials{Email: "nope", Password: "pw"}, "email: invalid email format"},
		{"long password", credentials{Email: "a@b.io", Password: "123456789"}, "password: value is too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.in))
		})
	}
}
