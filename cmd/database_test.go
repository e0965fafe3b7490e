package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unibridge-backend/internal/data/db"
)

func TestRenderEmbeddedCatalogue(t *testing.T) {
	rows, err := db.Catalogue()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	var buf bytes.Buffer
	renderCatalogue(&buf, rows)
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "DIFFICULTY")
	assert.Contains(t, out, rows[0].Name)
}
