package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintainerFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Maintainer
	}{
		{
			name: "deb variables win",
			env: map[string]string{
				"DEBFULLNAME": "Jane Doe",
				"NAME":        "ignored",
				"DEBEMAIL":    "jane@example.com",
				"EMAIL":       "ignored@example.com",
			},
			want: Maintainer{Name: "Jane Doe", Email: "jane@example.com"},
		},
		{
			name: "generic variables as fallback",
			env:  map[string]string{"NAME": "Sam", "EMAIL": "sam@example.com"},
			want: Maintainer{Name: "Sam", Email: "sam@example.com"},
		},
		{
			name: "fixed defaults when unset",
			env:  map[string]string{},
			want: Maintainer{Name: "kport builder", Email: "builder@localhost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaintainerFromEnv(func(k string) string { return tt.env[k] })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaintainerString(t *testing.T) {
	m := Maintainer{Name: "Jane Doe", Email: "jane@example.com"}
	assert.Equal(t, "Jane Doe <jane@example.com>", m.String())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "kport", cfg.Package)
	assert.Equal(t, "kport.py", cfg.EntryPoint)
	assert.Equal(t, "usr/bin/kport", cfg.InstallPath)
	assert.Equal(t, []string{"python3", "python3-psutil"}, cfg.RuntimeDeps)
	assert.Contains(t, cfg.Exclude, ".git")
	assert.Contains(t, cfg.Exclude, "dist")
	assert.NotEmpty(t, cfg.Maintainer.Name)
	assert.NotEmpty(t, cfg.Maintainer.Email)
}

func TestLoad_DescriptorOverlay(t *testing.T) {
	dir := t.TempDir()
	descriptor := `
package: mytool
entry_point: mytool.py
install_path: usr/bin/mytool
maintainer:
  name: Build Bot
  email: bot@example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(descriptor), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "mytool", cfg.Package)
	assert.Equal(t, "mytool.py", cfg.EntryPoint)
	assert.Equal(t, Maintainer{Name: "Build Bot", Email: "bot@example.com"}, cfg.Maintainer)
	// Untouched fields keep their defaults.
	assert.Equal(t, "dist", cfg.DistDir)
	assert.Equal(t, "utils", cfg.Section)
}

func TestLoad_BadDescriptor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("package: [broken"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
