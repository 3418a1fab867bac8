package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpls, err := Load()
	require.NoError(t, err)

	for _, name := range []string{"login.html", "home.html", "thread.html", "notfound.html"} {
		assert.Contains(t, tmpls, name)
	}
	assert.NotContains(t, tmpls, baseTemplate)
	assert.NotContains(t, tmpls, partialsTemplate)
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, m)

	_, err = dict("a")
	assert.Error(t, err)
	_, err = dict(1, 2)
	assert.Error(t, err)
}
