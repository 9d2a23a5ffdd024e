package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientName(t *testing.T) {
	d := NewDiscovery("dados_")

	tests := []struct {
		filename string
		client   string
		ok       bool
	}{
		{"dados_acme.csv", "acme", true},
		{"dados_banco_norte.csv", "banco_norte", true},
		{"dados_acme.CSV", "acme", true},
		{"dados_.csv", "", false},
		{"other_acme.csv", "", false},
		{"dados_acme.txt", "", false},
		{"readme.md", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			client, ok := d.ClientName(tt.filename)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.client, client)
		})
	}
}

func TestFindClientFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"dados_zulu.csv", "dados_alpha.csv", "notes.txt", "other.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dados_sub.csv"), 0755))

	d := NewDiscovery("dados_")
	files, err := d.FindClientFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "alpha", files[0].Client, "files are visited in name order")
	assert.Equal(t, "zulu", files[1].Client)
}

func TestFindClientFilesMissingDir(t *testing.T) {
	d := NewDiscovery("dados_")
	_, err := d.FindClientFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
