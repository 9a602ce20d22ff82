package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCountPackageLines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "corpus", "store.go"), "package corpus\n\nfunc A() {}\n   \n")
	writeFile(t, filepath.Join(root, "corpus", "store_test.go"), "package corpus\n\nfunc TestA() {}\n")
	writeFile(t, filepath.Join(root, "corpus", "notes.md"), "not go\n")
	writeFile(t, filepath.Join(root, "wiki", "service.go"), "package wiki\n")

	counts := map[string]*packageLines{}
	require.NoError(t, countPackageLines(root, counts))

	require.Len(t, counts, 2)
	assert.Equal(t, packageLines{prod: 2, test: 2}, *counts[filepath.Join(root, "corpus")])
	assert.Equal(t, packageLines{prod: 1}, *counts[filepath.Join(root, "wiki")])
}

func TestCountPackageLinesMissingRoot(t *testing.T) {
	counts := map[string]*packageLines{}
	require.NoError(t, countPackageLines(filepath.Join(t.TempDir(), "absent"), counts))
	assert.Empty(t, counts)
}

func TestCountSampleArticles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	writeFile(t, path, "articles:\n  - title: Poland\n  - title: Warsaw\n")

	n, err := countSampleArticles(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = countSampleArticles(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
