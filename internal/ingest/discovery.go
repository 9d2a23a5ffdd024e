package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// fileExt is the only extension the file producer emits.
const fileExt = ".csv"

// ClientFile pairs a discovered source file with the client name derived
// from its file name.
type ClientFile struct {
	Path   string
	Name   string
	Client string
}

// Discovery locates per-client transaction files following the
// <prefix><client>.csv naming convention.
type Discovery struct {
	prefix string
}

// NewDiscovery creates a discovery instance for the given file-name prefix
// (e.g. "dados_").
func NewDiscovery(prefix string) *Discovery {
	return &Discovery{prefix: prefix}
}

// FindClientFiles lists the files in dir matching the naming convention,
// sorted by file name so every load cycle visits them in the same order.
// Files yielding the same client name are kept; their records merge under
// one client at ingestion.
func (d *Discovery) FindClientFiles(dir string) ([]ClientFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []ClientFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		client, ok := d.ClientName(entry.Name())
		if !ok {
			continue
		}
		files = append(files, ClientFile{
			Path:   filepath.Join(dir, entry.Name()),
			Name:   entry.Name(),
			Client: client,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// ClientName extracts the client identifier from a file name by stripping
// the configured prefix and the .csv suffix. It is the sole source of
// client identity. The second return value is false when the file does not
// match the naming convention.
func (d *Discovery) ClientName(filename string) (string, bool) {
	if !strings.HasPrefix(filename, d.prefix) {
		return "", false
	}
	if !strings.EqualFold(filepath.Ext(filename), fileExt) {
		return "", false
	}
	client := strings.TrimPrefix(filename, d.prefix)
	client = client[:len(client)-len(fileExt)]
	if client == "" {
		return "", false
	}
	return client, true
}
