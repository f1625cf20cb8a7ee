package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcomandos(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"up", "down", "steps", "force", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCmd_ArgumentosInvalidos(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"steps", "uno"})
	assert.EqualError(t, root.Execute(), `n inválido "uno"`)

	root = newRootCmd()
	root.SetArgs([]string{"force"})
	assert.Error(t, root.Execute(), "force exige la versión")
}
