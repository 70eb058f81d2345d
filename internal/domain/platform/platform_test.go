package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/testutil/mocks"
)

const ubuntuRelease = `PRETTY_NAME="Ubuntu 24.04.1 LTS"
NAME="Ubuntu"
VERSION_ID="24.04"
VERSION="24.04.1 LTS (Noble Numbat)"
ID=ubuntu
ID_LIKE=debian
HOME_URL="https://www.ubuntu.com/"
`

func TestParseOSRelease(t *testing.T) {
	t.Parallel()

	rel, err := ParseOSRelease([]byte(ubuntuRelease))
	require.NoError(t, err)

	assert.Equal(t, "ubuntu", rel.ID)
	assert.Equal(t, []string{"debian"}, rel.IDLike)
	assert.Equal(t, "Ubuntu 24.04.1 LTS", rel.PrettyName)
	assert.Equal(t, "24.04", rel.VersionID)
	assert.Equal(t, []string{"ubuntu", "debian"}, rel.Families())
	assert.Equal(t, "Ubuntu 24.04.1 LTS", rel.Describe())
}

func TestOSRelease_Describe_Fallbacks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Debian GNU/Linux 12", OSRelease{Name: "Debian GNU/Linux", VersionID: "12"}.Describe())
	assert.Equal(t, "arch", OSRelease{ID: "arch"}.Describe())
}

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		goos    string
		files   map[string]string
		wantOS  OS
		wantEnv Environment
		wantID  string
	}{
		{
			name:    "native ubuntu",
			goos:    "linux",
			files:   map[string]string{OSReleasePath: ubuntuRelease, "/proc/version": "Linux version 6.8.0-45-generic"},
			wantOS:  OSLinux,
			wantEnv: EnvNative,
			wantID:  "ubuntu",
		},
		{
			name:    "wsl",
			goos:    "linux",
			files:   map[string]string{OSReleasePath: ubuntuRelease, "/proc/version": "Linux version 5.15.153.1-microsoft-standard-WSL2"},
			wantOS:  OSLinux,
			wantEnv: EnvWSL,
			wantID:  "ubuntu",
		},
		{
			name:    "container",
			goos:    "linux",
			files:   map[string]string{OSReleasePath: "ID=debian\n", "/.dockerenv": ""},
			wantOS:  OSLinux,
			wantEnv: EnvContainer,
			wantID:  "debian",
		},
		{
			name:    "darwin skips os-release",
			goos:    "darwin",
			files:   map[string]string{},
			wantOS:  OSDarwin,
			wantEnv: EnvNative,
		},
		{
			name:    "plan9",
			goos:    "plan9",
			wantOS:  OSUnknown,
			wantEnv: EnvNative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := mocks.NewFileSystem()
			for path, content := range tt.files {
				fs.AddFile(path, content)
			}

			d := NewDetector(fs)
			d.goos = tt.goos
			p, err := d.Detect()
			require.NoError(t, err)
			assert.Equal(t, tt.wantOS, p.OS())
			assert.Equal(t, tt.wantEnv, p.Environment())
			assert.Equal(t, tt.wantID, p.Release().ID)
		})
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	families := []string{"debian", "ubuntu"}
	ubuntu, _ := ParseOSRelease([]byte(ubuntuRelease))
	mint := OSRelease{ID: "linuxmint", IDLike: []string{"ubuntu", "debian"}}

	tests := []struct {
		name     string
		platform *Platform
		wantErr  string
	}{
		{name: "ubuntu", platform: New(OSLinux, "amd64", EnvNative, ubuntu)},
		{name: "derivative via ID_LIKE", platform: New(OSLinux, "amd64", EnvNative, mint)},
		{name: "fedora", platform: New(OSLinux, "amd64", EnvNative, OSRelease{ID: "fedora"}), wantErr: `unsupported operating system family "fedora"`},
		{name: "no os-release", platform: New(OSLinux, "amd64", EnvNative, OSRelease{}), wantErr: `unsupported operating system family "unknown"`},
		{name: "macOS", platform: New(OSDarwin, "arm64", EnvNative, OSRelease{}), wantErr: `unsupported operating system "darwin"`},
		{name: "nil", platform: nil, wantErr: "platform could not be detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Require(tt.platform, families)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.ErrorIs(t, err, &provision.StepError{Code: provision.ErrCodePreconditionFailed})
		})
	}
}

func TestPlatform_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "linux/amd64/wsl/ubuntu", New(OSLinux, "amd64", EnvWSL, OSRelease{ID: "ubuntu"}).String())
	assert.Equal(t, "darwin/arm64", New(OSDarwin, "arm64", EnvNative, OSRelease{}).String())
}
