package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Target:    "/data",
		OutputDir: "/reports",
		Recipient: "recipient@example.com",
		Sender:    "sender@example.com",
		Password:  "secret",
		SMTPHost:  DefaultSMTPHost,
		SMTPPort:  DefaultSMTPPort,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultSMTPHost, cfg.SMTPHost)
	assert.Equal(t, DefaultSMTPPort, cfg.SMTPPort)
	assert.Equal(t, os.TempDir(), cfg.TempDir)
	assert.False(t, cfg.SkipEmail)
	assert.Empty(t, cfg.Target)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("FOLDERREPORT_TARGET", "/srv/share")
	t.Setenv("FOLDERREPORT_RECIPIENT", "ops@example.com")
	t.Setenv("FOLDERREPORT_SMTP_PORT", "2525")
	t.Setenv("FOLDERREPORT_SKIP_EMAIL", "true")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/srv/share", cfg.Target)
	assert.Equal(t, "ops@example.com", cfg.Recipient)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.True(t, cfg.SkipEmail)
}

func TestLoadFileAndFlags(t *testing.T) {
	file := filepath.Join(t.TempDir(), "folderreport.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
target: /from/file
recipient: file@example.com
sender: robot@example.com
smtp_port: 465
`), 0o644))

	t.Setenv("FOLDERREPORT_RECIPIENT", "env@example.com")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("sender", "", "")
	flags.Int("smtp-port", DefaultSMTPPort, "")
	require.NoError(t, flags.Parse([]string{"--smtp-port", "2587"}))

	v := New()
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v, file)
	require.NoError(t, err)

	assert.Equal(t, "/from/file", cfg.Target)
	// Environment beats the file, a set flag beats both.
	assert.Equal(t, "env@example.com", cfg.Recipient)
	assert.Equal(t, 2587, cfg.SMTPPort)
	// An unset flag does not shadow the file value.
	assert.Equal(t, "robot@example.com", cfg.Sender)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing target", mutate: func(c *Config) { c.Target = "" }, wantErr: "target directory is required"},
		{name: "missing output dir", mutate: func(c *Config) { c.OutputDir = "" }, wantErr: "output directory is required"},
		{name: "missing recipient", mutate: func(c *Config) { c.Recipient = "" }, wantErr: "recipient is required"},
		{name: "missing sender", mutate: func(c *Config) { c.Sender = "" }, wantErr: "sender is required"},
		{name: "bad port", mutate: func(c *Config) { c.SMTPPort = 70000 }, wantErr: "smtp port 70000 out of range"},
		{
			name: "skip email ignores mail settings",
			mutate: func(c *Config) {
				c.SkipEmail = true
				c.Recipient = ""
				c.Sender = ""
				c.SMTPPort = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedaction(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "********", cfg.Redacted().Password)
	assert.Equal(t, "secret", cfg.Password)
	assert.NotContains(t, cfg.String(), "secret")

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "********")
	assert.Contains(t, out, "target: /data")
	assert.NotContains(t, out, "secret")
}
