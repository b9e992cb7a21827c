package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"*.json", "package.json", true},
		{"*.json", "src/config.json", false},
		{"**/*.tsx", "src/components/App.tsx", true},
		{"src/**/*.ts", "src/deep/nested/mod.ts", true},
		{"src/**/*.ts", "lib/mod.ts", false},
		{"src/*.ts", "src/mod.ts", true},
		{"src/*.ts", "src/deep/mod.ts", false},
		{"", "anything", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchGlob(tc.pattern, tc.value), "%s vs %s", tc.pattern, tc.value)
	}
}

func TestGlobFiles(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a.ts", "src/b.ts", "src/deep/c.ts", "src/d.js"} {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}

	matches, err := globFiles(root, "**/*.ts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.ts", "src/b.ts", "src/deep/c.ts"}, matches)

	matches, err = globFiles(root, "src/*.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/d.js"}, matches)

	_, err = globFiles(filepath.Join(root, "missing"), "*")
	assert.Error(t, err)
}
