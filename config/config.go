package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/luci/go-render/render"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"
)

const (
	TransportTCP = "tcp"
	TransportUDP = "udp"

	DefaultConfigPath = "config.yaml"
	DefaultPort       = 4567
	DefaultTimeout    = 250
	DefaultRetries    = 3

	// log_file values that do not name a file
	LogStderr = "stderr"
	LogStdout = "stdout"
)

type AppConfig struct {
	AppConfigPath string `yaml:"-"`

	Transport          string `yaml:"transport"`
	Server             string `yaml:"server"`
	Port               uint16 `yaml:"port"`
	UDPTimeoutMs       int    `yaml:"udp_timeout_ms"`
	MaxRetransmissions int    `yaml:"max_retransmissions"`

	LogFile       string `yaml:"log_file"`
	LogLevel      string `yaml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`

	MetricsAddr string `yaml:"metrics_addr"`
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Default() *AppConfig {
	return &AppConfig{
		AppConfigPath:      DefaultConfigPath,
		Port:               DefaultPort,
		UDPTimeoutMs:       DefaultTimeout,
		MaxRetransmissions: DefaultRetries,
		LogFile:            LogStderr,
		LogLevel:           "error",
		LogMaxSizeMB:       10,
		LogMaxBackups:      3,
	}
}

// Load reads the yaml file at path on top of the defaults. A missing file is
// only an error when the path was given explicitly.
func Load(path string, explicit bool) (*AppConfig, error) {
	appConfig := Default()
	if path == "" {
		path = DefaultConfigPath
	}
	appConfig.AppConfigPath = path

	if !FileExists(path) {
		if explicit {
			return nil, errors.Errorf("config file %s does not exist", path)
		}
		return appConfig, nil
	}

	content, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can`t read config file %s", path)
	}

	if err := yaml.Unmarshal(content, appConfig); err != nil {
		return nil, errors.Wrapf(err, "yaml file %s parsing error", path)
	}
	appConfig.AppConfigPath = path

	return appConfig, nil
}

func (c *AppConfig) Validate() error {
	switch strings.ToLower(c.Transport) {
	case TransportTCP, TransportUDP:
		c.Transport = strings.ToLower(c.Transport)
	case "":
		return &ConfigError{Field: "transport", Reason: "required, tcp or udp"}
	default:
		return &ConfigError{Field: "transport", Reason: fmt.Sprintf("%q is neither tcp nor udp", c.Transport)}
	}

	if c.Server == "" {
		return &ConfigError{Field: "server", Reason: "required"}
	}
	if c.Port == 0 {
		return &ConfigError{Field: "port", Reason: "must be between 1 and 65535"}
	}
	if c.UDPTimeoutMs <= 0 {
		return &ConfigError{Field: "udp_timeout_ms", Reason: "must be positive"}
	}
	if c.MaxRetransmissions < 0 {
		return &ConfigError{Field: "max_retransmissions", Reason: "must not be negative"}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return &ConfigError{Field: "log_level", Reason: err.Error()}
	}

	return nil
}

// Render is the config as a debug string.
func (c *AppConfig) Render() string {
	return render.Render(c)
}

func (c *AppConfig) UDPTimeout() time.Duration {
	return time.Duration(c.UDPTimeoutMs) * time.Millisecond
}

// SetupLogger applies log_level and log_file to logrus. Any log_file other
// than stderr or stdout is a file rotated by lumberjack.
func (c *AppConfig) SetupLogger() (io.Closer, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse '%v' as a log level", c.LogLevel)
	}

	logrus.SetLevel(lvl)

	switch c.LogFile {
	case "", LogStderr:
		logrus.SetOutput(os.Stderr)
		return nil, nil
	case LogStdout:
		logrus.SetOutput(os.Stdout)
		return nil, nil
	}

	absDest, err := filepath.Abs(c.LogFile)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get absolute file path %s", c.LogFile)
	}

	out := &lumberjack.Logger{
		Filename:   absDest,
		MaxSize:    c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
	}
	logrus.SetOutput(out)

	return out, nil
}

// FileExists reports whether the named file or directory exists.
func FileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}
