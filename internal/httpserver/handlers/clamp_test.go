package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampInt(t *testing.T) {
	assert.Equal(t, 20, clampInt("", 20, 1, 100))
	assert.Equal(t, 20, clampInt("garbage", 20, 1, 100))
	assert.Equal(t, 42, clampInt("42", 20, 1, 100))
	assert.Equal(t, 1, clampInt("0", 20, 1, 100))
	assert.Equal(t, 1, clampInt("-5", 20, 1, 100))
	assert.Equal(t, 100, clampInt("500", 20, 1, 100))
	assert.Equal(t, 200, clampInt("9999", 50, 1, 200))
}
