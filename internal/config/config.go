/*
Package config loads the settings of a report run.

Settings are resolved, highest precedence first, from command-line flags,
FOLDERREPORT_* environment variables, an optional YAML config file and the
built-in defaults.

Environment Variables:

	FOLDERREPORT_TARGET        Directory to analyze
	FOLDERREPORT_OUTPUT_DIR    Directory the PDF report is written to
	FOLDERREPORT_RECIPIENT     Address the report is mailed to
	FOLDERREPORT_SENDER        Sender account and From address
	FOLDERREPORT_PASSWORD      Sender account password
	FOLDERREPORT_SMTP_HOST     SMTP server host
	FOLDERREPORT_SMTP_PORT     SMTP submission port
	FOLDERREPORT_SUBJECT       Email subject (default includes the date)
	FOLDERREPORT_TEMP_DIR      Parent directory for transient chart images
	FOLDERREPORT_SKIP_EMAIL    Generate the report without sending it
	FOLDERREPORT_DEBUG         Enable debug logging

Default Values:

	OutputDir: "."
	SMTPHost:  "smtp.gmail.com"
	SMTPPort:  587
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FOLDERREPORT"

// Default values.
const (
	DefaultOutputDir = "."
	DefaultSMTPHost  = "smtp.gmail.com"
	DefaultSMTPPort  = 587
)

// Config holds every setting of a report run.
type Config struct {
	// Target is the directory to analyze.
	Target string `mapstructure:"target" yaml:"target"`
	// OutputDir is where the report is written.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// Recipient receives the report.
	Recipient string `mapstructure:"recipient" yaml:"recipient"`
	// Sender is the SMTP account and From address.
	Sender string `mapstructure:"sender" yaml:"sender"`
	// Password authenticates Sender.
	Password string `mapstructure:"password" yaml:"password"`
	// SMTPHost is the mail submission host.
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	// SMTPPort is the mail submission port.
	SMTPPort int `mapstructure:"smtp_port" yaml:"smtp_port"`
	// Subject overrides the default email subject.
	Subject string `mapstructure:"subject" yaml:"subject,omitempty"`
	// TempDir is the parent of the transient chart directory.
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`
	// SkipEmail stops the run after the report has been written.
	SkipEmail bool `mapstructure:"skip_email" yaml:"skip_email"`
	// Debug enables debug logging.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// keys lists every setting, in the order used for env binding.
//
//nolint:gochecknoglobals // Key list
var keys = []string{
	"target", "output_dir", "recipient", "sender", "password",
	"smtp_host", "smtp_port", "subject", "temp_dir", "skip_email", "debug",
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("smtp_host", DefaultSMTPHost)
	v.SetDefault("smtp_port", DefaultSMTPPort)
	v.SetDefault("temp_dir", os.TempDir())
	v.SetDefault("skip_email", false)
	v.SetDefault("debug", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	return v
}

// BindFlags binds command-line flags named like the keys, with dashes
// instead of underscores, so that set flags take precedence.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range keys {
		flag := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
		if flag == nil {
			continue
		}

		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %q: %w", flag.Name, err)
		}
	}

	return nil
}

// Load resolves the configuration from v, reading file first when it is not empty.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %q: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that every setting a full run needs is present.
// Credential formats are not checked.
func (c Config) Validate() error {
	var errs []error

	if c.Target == "" {
		errs = append(errs, errors.New("target directory is required"))
	}

	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if !c.SkipEmail {
		if c.Recipient == "" {
			errs = append(errs, errors.New("recipient is required"))
		}

		if c.Sender == "" {
			errs = append(errs, errors.New("sender is required"))
		}

		if c.SMTPHost == "" {
			errs = append(errs, errors.New("smtp host is required"))
		}

		if c.SMTPPort < 1 || c.SMTPPort > 65535 {
			errs = append(errs, fmt.Errorf("smtp port %d out of range", c.SMTPPort))
		}
	}

	return errors.Join(errs...)
}

// Redacted returns a copy with the password masked.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "********"
	}

	return c
}

// YAML renders the redacted configuration.
func (c Config) YAML() (string, error) {
	data, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return "", fmt.Errorf("encoding configuration: %w", err)
	}

	return string(data), nil
}

// String returns a string representation of the configuration without the password.
func (c Config) String() string {
	r := c.Redacted()

	return fmt.Sprintf(
		"Config{Target: %s, OutputDir: %s, Recipient: %s, Sender: %s, Password: %s, "+
			"SMTPHost: %s, SMTPPort: %d, Subject: %q, TempDir: %s, SkipEmail: %v, Debug: %v}",
		r.Target, r.OutputDir, r.Recipient, r.Sender, r.Password,
		r.SMTPHost, r.SMTPPort, r.Subject, r.TempDir, r.SkipEmail, r.Debug,
	)
}
