package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("senha-segura")
	assert.NoError(t, err)
	assert.NotEqual(t, "senha-segura", hash)

	assert.True(t, CheckPasswordHash("senha-segura", hash))
	assert.False(t, CheckPasswordHash("senha-errada", hash))
	assert.False(t, CheckPasswordHash("senha-segura", "not-a-hash"))
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(48)
	assert.NoError(t, err)
	assert.Len(t, a, 48)

	b, err := GenerateRandomToken(48)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNormalizeSlug(t *testing.T) {
	assert.Equal(t, "copa-do-bairro", NormalizeSlug("Copa do Bairro"))
	assert.Equal(t, "copa-sao-joao-2026", NormalizeSlug("Copa São João 2026!"))
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("copa-do-bairro"))
	assert.False(t, IsValidSlug(""))
	assert.False(t, IsValidSlug("Copa do Bairro"))
	assert.False(t, IsValidSlug("copa_são"))
}
