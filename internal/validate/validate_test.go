package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/validate"
)

func TestID(t *testing.T) {
	for _, ok := range []string{"1", "frango-inteiro", "9b2c1f4e-6a1d-4c3b-8f2e-0d9a7c6b5a41"} {
		_, valid := validate.ID(ok)
		assert.True(t, valid, ok)
	}
	for _, bad := range []string{"", "   ", "a b", "../x", "<script>"} {
		_, valid := validate.ID(bad)
		assert.False(t, valid, bad)
	}
}

func TestPhone(t *testing.T) {
	for _, ok := range []string{"84999990000", "(84) 99999-0000", "+55 84 99999 0000"} {
		_, valid := validate.Phone(ok)
		assert.True(t, valid, ok)
	}
	for _, bad := range []string{"", "abc", "1234", "+55 84 99999 0000 0000 0"} {
		_, valid := validate.Phone(bad)
		assert.False(t, valid, bad)
	}
}

func TestNameAndAddress(t *testing.T) {
	name, ok := validate.Name("  João  ")
	assert.True(t, ok)
	assert.Equal(t, "João", name)
	_, ok = validate.Name("")
	assert.False(t, ok)

	_, ok = validate.Address("Rua das Flores, 10")
	assert.True(t, ok)
	_, ok = validate.Address(" ")
	assert.False(t, ok)
}

func TestStruct(t *testing.T) {
	type req struct {
		Name  string `validate:"required,max=5"`
		Stock int    `validate:"gte=0"`
	}
	assert.NoError(t, validate.Struct(req{Name: "ok"}))
	assert.Error(t, validate.Struct(req{}))
	assert.Error(t, validate.Struct(req{Name: "toolong"}))
	assert.Error(t, validate.Struct(req{Name: "ok", Stock: -1}))
}
