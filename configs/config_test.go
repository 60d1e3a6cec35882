package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameCode(t *testing.T) {
	code, err := GameCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, strings.ToUpper(code), code)

	other, err := GameCode()
	require.NoError(t, err)
	assert.NotEqual(t, code, other, "codes must vary across games")
}

func TestCreateUniqueInstance(t *testing.T) {
	id := CreateUniqueInstance("game")
	require.NotEmpty(t, id)
	assert.Equal(t, id, GetInstanceId())

	// a second service start gets its own identity
	other := CreateUniqueInstance("game")
	assert.NotEqual(t, id, other)
	assert.Equal(t, other, GetInstanceId())
}
