package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/testutil/mocks"
)

const searchYAML = "/xdg/groundwork/config.yaml"
const searchTOML = "/xdg/groundwork/config.toml"

func newLoader(fs *mocks.FileSystem) *config.Loader {
	return config.NewLoader(fs).WithSearchPaths(searchYAML, searchTOML)
}

func TestLoader_Load_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := newLoader(mocks.NewFileSystem()).Load("")

	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoader_Load_ExplicitMissingFile(t *testing.T) {
	t.Parallel()

	_, err := newLoader(mocks.NewFileSystem()).Load("/nonexistent/groundwork.yaml")

	require.Error(t, err)
	assert.ErrorIs(t, err, &config.UserError{Code: config.ErrCodeConfigNotFound})
}

func TestLoader_Load_YAMLOverridesDefaults(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile(searchYAML, `
workspace:
  base: /srv/dev
apt:
  packages: [git, neovim]
  refresh_interval: 6h
docs:
  policy: refresh
identity:
  name: Ada Lovelace
`)

	cfg, err := newLoader(fs).Load("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/dev", cfg.Workspace.Base)
	assert.Equal(t, []string{"git", "neovim"}, cfg.Apt.Packages)
	assert.Equal(t, 6*time.Hour, cfg.RefreshInterval())
	assert.Equal(t, config.DocsRefresh, cfg.Docs.Policy)
	assert.Equal(t, "Ada Lovelace", cfg.Identity.Name)
	// untouched sections keep their defaults
	assert.Equal(t, "~/.bashrc", cfg.Shell.Profile)
	assert.True(t, cfg.Apt.Upgrade)
}

func TestLoader_Load_TOML(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile(searchTOML, `
[ssh]
host = "gitlab.com"

[apt]
upgrade = false

[[tools]]
name = "rustup"
install = [["sh", "-c", "curl -sSf https://sh.rustup.rs | sh -s -- -y"]]
`)

	cfg, err := newLoader(fs).Load("")
	require.NoError(t, err)

	assert.Equal(t, "gitlab.com", cfg.SSH.Host)
	assert.False(t, cfg.Apt.Upgrade)
	var rustup *config.ToolConfig
	for i := range cfg.Tools {
		if cfg.Tools[i].Name == "rustup" {
			rustup = &cfg.Tools[i]
		}
	}
	require.NotNil(t, rustup)
	assert.Equal(t, []string{"sh", "-c", "curl -sSf https://sh.rustup.rs | sh -s -- -y"}, rustup.Install[0])
}

func TestLoader_Load_EmptyFile(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("/etc/groundwork.yaml", "")

	cfg, err := newLoader(fs).Load("/etc/groundwork.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoader_Load_ParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		content string
	}{
		{name: "bad yaml", path: "/c/config.yaml", content: "workspace:\n  base: [unterminated\n"},
		{name: "unknown yaml key", path: "/c/config.yaml", content: "workspace:\n  bsae: /tmp\n"},
		{name: "bad toml", path: "/c/config.toml", content: "[ssh\nhost = 1\n"},
		{name: "unknown toml key", path: "/c/config.toml", content: "[ssh]\nhots = \"x\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := mocks.NewFileSystem()
			fs.AddFile(tt.path, tt.content)

			_, err := newLoader(fs).Load(tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, &config.UserError{Code: config.ErrCodeConfigParse})
		})
	}
}

func TestLoader_Load_InvalidValues(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile(searchYAML, "apt:\n  packages: [\"git && reboot\"]\n")

	_, err := newLoader(fs).Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, &config.UserError{Code: config.ErrCodeConfigInvalid})
	assert.Contains(t, err.Error(), "apt.packages")
}

func TestEncode_RoundTripsThroughDecode(t *testing.T) {
	t.Parallel()

	for _, format := range []config.Format{config.FormatYAML, config.FormatTOML} {
		data, err := config.Encode(config.Default(), format)
		require.NoError(t, err, format)

		cfg := &config.Config{}
		require.NoError(t, config.Decode(data, format, cfg), format)
		assert.Equal(t, config.Default(), cfg, format)
	}
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, config.FormatTOML, config.FormatOf("/x/config.TOML"))
	assert.Equal(t, config.FormatYAML, config.FormatOf("/x/config.yml"))
	assert.Equal(t, config.FormatYAML, config.FormatOf("/x/config"))
}
