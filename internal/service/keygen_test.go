package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode_Shape(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		assert.NoError(t, err)
		assert.Len(t, code, CodeLength)
		assert.True(t, looksLikeCode(code), "generated code %q failed its own validator", code)
	}
}

func TestLooksLikeCode(t *testing.T) {
	assert.True(t, looksLikeCode("000000"))
	assert.True(t, looksLikeCode("987654"))
	assert.False(t, looksLikeCode(""))
	assert.False(t, looksLikeCode("12345"))
	assert.False(t, looksLikeCode("1234567"))
	assert.False(t, looksLikeCode("12a456"))
	assert.False(t, looksLikeCode("12 456"))
}
