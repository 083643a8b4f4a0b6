// Package config loads the ball-info configuration from YAML and the
// environment.
//
// Every field is optional. Missing fields keep the values from Default, which
// match the competition robot's color table and camera settings. The
// configuration is read once at startup and never reloaded.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/ball-info/internal/detection"
	"github.com/ironsheep/ball-info/internal/imaging"
	"github.com/ironsheep/ball-info/internal/logging"
)

// Environment overrides, applied after the file.
const (
	EnvListen = "BALL_INFO_LISTEN"
	EnvSource = "BALL_INFO_SOURCE"
)

// Config is the top level configuration document.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Classes  []ClassConfig  `yaml:"classes"`
	Source   SourceConfig   `yaml:"source"`
	Publish  PublishConfig  `yaml:"publish"`
	Annotate AnnotateConfig `yaml:"annotate"`
}

// ClassConfig is one color class with [h, s, v] bounds in the 8-bit HSV
// convention (hue 0-179).
type ClassConfig struct {
	Name  string `yaml:"name"`
	Lower [3]int `yaml:"lower,flow"`
	Upper [3]int `yaml:"upper,flow"`
}

// SourceConfig selects where frames come from.
//
// Input is a device (/dev/video0), a video file, a stream URL, or a directory
// of still images. Format is passed to ffmpeg as the input format; leave it
// empty to let ffmpeg detect it. Width and Height are the size frames are scaled
// to before detection.
type SourceConfig struct {
	Input  string `yaml:"input"`
	Format string `yaml:"format"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	FPS    int    `yaml:"fps"`
}

// PublishConfig controls the detection sinks.
type PublishConfig struct {
	// Listen is the websocket hub address; empty disables the hub.
	Listen string `yaml:"listen"`
	// Stdout writes one JSON line per published message.
	Stdout bool `yaml:"stdout"`
	// PublishEmpty also publishes frames in which nothing was found.
	PublishEmpty bool `yaml:"publish_empty"`
}

// AnnotateConfig controls the annotated frame dump.
type AnnotateConfig struct {
	// Dir receives annotated PNGs; empty disables annotation.
	Dir string `yaml:"dir"`
	// Every writes one in Every frames.
	Every int `yaml:"every"`
}

// Default returns the built-in configuration.
func Default() *Config {
	table := detection.DefaultColorTable()
	classes := make([]ClassConfig, len(table))
	for i, c := range table {
		classes[i] = ClassConfig{
			Name:  c.Name,
			Lower: [3]int{int(c.Lower.H), int(c.Lower.S), int(c.Lower.V)},
			Upper: [3]int{int(c.Upper.H), int(c.Upper.S), int(c.Upper.V)},
		}
	}
	return &Config{
		LogLevel: "info",
		Classes:  classes,
		Source: SourceConfig{
			Input:  "/dev/video0",
			Format: "v4l2",
			Width:  640,
			Height: 480,
			FPS:    30,
		},
		Publish: PublishConfig{
			Listen: ":8090",
			Stdout: true,
		},
		Annotate: AnnotateConfig{
			Every: 30,
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := cfg.decode(data); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse is Load for an in-memory document. Environment overrides are not
// applied.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(logging.EnvLevel); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvListen); ok {
		c.Publish.Listen = v
	}
	if v, ok := os.LookupEnv(EnvSource); ok {
		c.Source.Input = v
	}
}

// Validate checks the log level, the color table and the numeric settings.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if _, err := c.ColorTable(); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if c.Source.Width < 0 || c.Source.Height < 0 || c.Source.FPS < 0 {
		return errors.Errorf("invalid config: negative source geometry %dx%d@%d",
			c.Source.Width, c.Source.Height, c.Source.FPS)
	}
	if c.Annotate.Every < 0 {
		return errors.Errorf("invalid config: annotate.every %d is negative", c.Annotate.Every)
	}
	return nil
}

// ColorTable converts the configured classes into a validated detection
// table.
func (c *Config) ColorTable() (detection.ColorTable, error) {
	table := make(detection.ColorTable, len(c.Classes))
	for i, cc := range c.Classes {
		lower, err := toHSV(cc.Lower)
		if err != nil {
			return nil, errors.Wrapf(err, "class %q lower", cc.Name)
		}
		upper, err := toHSV(cc.Upper)
		if err != nil {
			return nil, errors.Wrapf(err, "class %q upper", cc.Name)
		}
		table[i] = detection.ColorClass{Name: cc.Name, Lower: lower, Upper: upper}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func toHSV(v [3]int) (imaging.HSV, error) {
	if v[0] < 0 || v[0] > imaging.HueMax {
		return imaging.HSV{}, errors.Errorf("hue %d out of range 0-%d", v[0], imaging.HueMax)
	}
	for _, x := range v[1:] {
		if x < 0 || x > 255 {
			return imaging.HSV{}, errors.Errorf("value %d out of range 0-255", x)
		}
	}
	return imaging.HSV{H: uint8(v[0]), S: uint8(v[1]), V: uint8(v[2])}, nil
}
