// Package config loads image-convert settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// environment variables. Every field has an env key made of the prefix
// IMAGE_CONVERT_ and the section and field names, e.g.
// IMAGE_CONVERT_FETCH_TIMEOUT=10s or IMAGE_CONVERT_ENCODE_FORMAT=jpeg.
package config

import (
	"image/color"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-convert/internal/imaging"
	"github.com/ironsheep/image-convert/pkg/convert"
	"github.com/ironsheep/image-convert/pkg/fetch"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMAGE_CONVERT"

// Config is the complete image-convert configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" env:"LOG"`
	Fetch  FetchConfig  `yaml:"fetch" env:"FETCH"`
	Encode EncodeConfig `yaml:"encode" env:"ENCODE"`
	Decode DecodeConfig `yaml:"decode" env:"DECODE"`
	Write  WriteConfig  `yaml:"write" env:"WRITE"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn or error.
	Level string `yaml:"level" env:"LEVEL"`
}

// FetchConfig controls URL downloads.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
	UserAgent    string        `yaml:"user_agent" env:"USER_AGENT"`
	MaxRedirects int           `yaml:"max_redirects" env:"MAX_REDIRECTS"`
}

// EncodeConfig controls how decoded images and arrays become bytes.
type EncodeConfig struct {
	// Format is png, jpeg, gif, bmp or tiff.
	Format      string `yaml:"format" env:"FORMAT"`
	JPEGQuality int    `yaml:"jpeg_quality" env:"JPEG_QUALITY"`
}

// DecodeConfig controls how bytes become images.
type DecodeConfig struct {
	AutoOrient bool `yaml:"auto_orient" env:"AUTO_ORIENT"`

	// Background is a hex color ("#ffffff") transparent images are
	// composited over. Empty means alpha is discarded.
	Background string `yaml:"background" env:"BACKGROUND"`
}

// WriteConfig controls file output.
type WriteConfig struct {
	Atomic bool `yaml:"atomic" env:"ATOMIC"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Fetch: FetchConfig{
			Timeout:      fetch.DefaultTimeout,
			UserAgent:    fetch.DefaultUserAgent,
			MaxRedirects: fetch.DefaultMaxRedirects,
		},
		Encode: EncodeConfig{
			Format:      "png",
			JPEGQuality: imaging.DefaultJPEGQuality,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), EnvPrefix); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "log.level")
	}
	if c.Fetch.Timeout <= 0 {
		return errors.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Fetch.MaxRedirects < 0 {
		return errors.Errorf("fetch.max_redirects must not be negative, got %d", c.Fetch.MaxRedirects)
	}
	if _, err := imaging.ParseFormat(c.Encode.Format); err != nil {
		return errors.Wrap(err, "encode.format")
	}
	if c.Encode.JPEGQuality < 1 || c.Encode.JPEGQuality > 100 {
		return errors.Errorf("encode.jpeg_quality must be between 1 and 100, got %d", c.Encode.JPEGQuality)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	return nil
}

// BackgroundColor parses Decode.Background. It returns nil when no
// background is configured.
func (c *Config) BackgroundColor() (color.Color, error) {
	if c.Decode.Background == "" {
		return nil, nil
	}
	hex := c.Decode.Background
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	bg, err := colorful.Hex(hex)
	if err != nil {
		return nil, errors.Wrapf(err, "decode.background %q", c.Decode.Background)
	}
	return bg, nil
}

// Level returns the configured zap level, defaulting to info.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// ConverterOptions translates the configuration into converter options.
// The config must have passed Validate.
func (c *Config) ConverterOptions(logger *zap.Logger) []convert.Option {
	format, _ := imaging.ParseFormat(c.Encode.Format)
	bg, _ := c.BackgroundColor()

	fetcher := fetch.New(
		fetch.WithLogger(logger),
		fetch.WithTimeout(c.Fetch.Timeout),
		fetch.WithUserAgent(c.Fetch.UserAgent),
		fetch.WithMaxRedirects(c.Fetch.MaxRedirects),
	)

	opts := []convert.Option{
		convert.WithLogger(logger),
		convert.WithFetcher(fetcher),
		convert.WithFormat(format),
		convert.WithJPEGQuality(c.Encode.JPEGQuality),
		convert.WithAutoOrientation(c.Decode.AutoOrient),
		convert.WithAtomicWrites(c.Write.Atomic),
	}
	if bg != nil {
		opts = append(opts, convert.WithBackground(bg))
	}
	return opts
}

func setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + tag

		if field.Kind() == reflect.Struct {
			if err := setFieldsFromEnv(field, key); err != nil {
				return err
			}
			continue
		}

		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			continue
		}
		if err := setFieldValue(field, value); err != nil {
			return errors.Wrapf(err, "failed to set %s", key)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return errors.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
