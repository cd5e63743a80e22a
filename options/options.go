package options

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	VersionLatest = "latest"

	ProfileCore          = "core"
	ProfileCompatibility = "compatibility"

	AccelOn       = "true"
	AccelOff      = "false"
	AccelDontCare = "dont_care"

	DialectGLSL = "glsl"
	DialectESSL = "essl"
)

// Options is the full configuration surface of a ckrl program.
type Options struct {
	Window  WindowOptions  `mapstructure:"window"`
	Context ContextOptions `mapstructure:"context"`
	Shader  ShaderOptions  `mapstructure:"shader"`
	Capture CaptureOptions `mapstructure:"capture"`
	Logging LoggingOptions `mapstructure:"logging"`
}

type WindowOptions struct {
	Title      string `mapstructure:"title"`
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	VSync      bool   `mapstructure:"vsync"`
	Fullscreen bool   `mapstructure:"fullscreen"`
}

// ContextOptions are the GL context creation hints.
type ContextOptions struct {
	// Version is "latest" or "major.minor".
	Version              string `mapstructure:"version"`
	Profile              string `mapstructure:"profile"`
	HardwareAcceleration string `mapstructure:"hardware_acceleration"`
	SRGB                 bool   `mapstructure:"srgb"`
}

type ShaderOptions struct {
	Dialect string `mapstructure:"dialect"`
}

// CaptureOptions control frame recording. An empty Output disables it.
type CaptureOptions struct {
	Output     string `mapstructure:"output"`
	FPS        int    `mapstructure:"fps"`
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	Frames     int    `mapstructure:"frames"`
	Headless   bool   `mapstructure:"headless"`
}

type LoggingOptions struct {
	Level string `mapstructure:"level"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Options {
	return &Options{
		Window: WindowOptions{
			Title:  "ckrl",
			Width:  800,
			Height: 600,
			VSync:  true,
		},
		Context: ContextOptions{
			Version:              VersionLatest,
			Profile:              ProfileCore,
			HardwareAcceleration: AccelOn,
			SRGB:                 true,
		},
		Shader: ShaderOptions{
			Dialect: DialectGLSL,
		},
		Capture: CaptureOptions{
			FPS: 60,
		},
		Logging: LoggingOptions{
			Level: "debug",
		},
	}
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"title":      "window.title",
	"width":      "window.width",
	"height":     "window.height",
	"vsync":      "window.vsync",
	"fullscreen": "window.fullscreen",
	"gl-version": "context.version",
	"profile":    "context.profile",
	"hw-accel":   "context.hardware_acceleration",
	"srgb":       "context.srgb",
	"dialect":    "shader.dialect",
	"record":     "capture.output",
	"fps":        "capture.fps",
	"ffmpeg":     "capture.ffmpeg_path",
	"frames":     "capture.frames",
	"headless":   "capture.headless",
	"log-level":  "logging.level",
}

// RegisterFlags adds one flag per configurable key to fs, with the
// built-in defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("title", d.Window.Title, "window title")
	fs.Int("width", d.Window.Width, "window width")
	fs.Int("height", d.Window.Height, "window height")
	fs.Bool("vsync", d.Window.VSync, "synchronise swaps with the display")
	fs.Bool("fullscreen", d.Window.Fullscreen, "fullscreen on the first monitor")
	fs.String("gl-version", d.Context.Version, `OpenGL version, "latest" or major.minor`)
	fs.String("profile", d.Context.Profile, "OpenGL profile: core or compatibility")
	fs.String("hw-accel", d.Context.HardwareAcceleration, "hardware acceleration: true, false or dont_care")
	fs.Bool("srgb", d.Context.SRGB, "request an sRGB framebuffer")
	fs.String("dialect", d.Shader.Dialect, "shader dialect: glsl or essl")
	fs.String("record", d.Capture.Output, "record frames to this video file")
	fs.Int("fps", d.Capture.FPS, "frame rate of the recording")
	fs.String("ffmpeg", d.Capture.FFmpegPath, "path to the ffmpeg executable")
	fs.Int("frames", d.Capture.Frames, "stop after this many frames (0 = no limit)")
	fs.Bool("headless", d.Capture.Headless, "render without a window (linux, needs --frames)")
	fs.String("log-level", d.Logging.Level, "log level: debug, info, warn or error")
}

// Load reads the configuration from defaults, an optional config file, the
// CKRL_* environment and the given flags, in increasing precedence.
func Load(cfgFile string, flags *pflag.FlagSet) (*Options, error) {
	v := viper.New()

	cfg := Default()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ckrl"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("ckrl")
	}

	v.SetEnvPrefix("CKRL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// YAML booleans arrive here weakly typed as "1"/"0".
	switch cfg.Context.HardwareAcceleration {
	case "1":
		cfg.Context.HardwareAcceleration = AccelOn
	case "0":
		cfg.Context.HardwareAcceleration = AccelOff
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Options) {
	v.SetDefault("window.title", cfg.Window.Title)
	v.SetDefault("window.width", cfg.Window.Width)
	v.SetDefault("window.height", cfg.Window.Height)
	v.SetDefault("window.vsync", cfg.Window.VSync)
	v.SetDefault("window.fullscreen", cfg.Window.Fullscreen)

	v.SetDefault("context.version", cfg.Context.Version)
	v.SetDefault("context.profile", cfg.Context.Profile)
	v.SetDefault("context.hardware_acceleration", cfg.Context.HardwareAcceleration)
	v.SetDefault("context.srgb", cfg.Context.SRGB)

	v.SetDefault("shader.dialect", cfg.Shader.Dialect)

	v.SetDefault("capture.output", cfg.Capture.Output)
	v.SetDefault("capture.fps", cfg.Capture.FPS)
	v.SetDefault("capture.ffmpeg_path", cfg.Capture.FFmpegPath)
	v.SetDefault("capture.frames", cfg.Capture.Frames)
	v.SetDefault("capture.headless", cfg.Capture.Headless)

	v.SetDefault("logging.level", cfg.Logging.Level)
}

// Validate checks if the configuration is valid
func (o *Options) Validate() error {
	if o.Window.Width <= 0 || o.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", o.Window.Width, o.Window.Height)
	}
	if _, _, err := o.Context.ParseVersion(); err != nil {
		return err
	}
	if !contains([]string{ProfileCore, ProfileCompatibility}, o.Context.Profile) {
		return fmt.Errorf("context.profile must be one of: %v", []string{ProfileCore, ProfileCompatibility})
	}
	accel := []string{AccelOn, AccelOff, AccelDontCare}
	if !contains(accel, o.Context.HardwareAcceleration) {
		return fmt.Errorf("context.hardware_acceleration must be one of: %v", accel)
	}
	if !contains([]string{DialectGLSL, DialectESSL}, o.Shader.Dialect) {
		return fmt.Errorf("shader.dialect must be one of: %v", []string{DialectGLSL, DialectESSL})
	}
	if o.Capture.FPS <= 0 {
		return errors.New("capture.fps must be positive")
	}
	if o.Capture.Frames < 0 {
		return errors.New("capture.frames must not be negative")
	}
	if o.Capture.Headless && o.Capture.Frames == 0 {
		return errors.New("capture.headless requires capture.frames")
	}
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, o.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}
	return nil
}

// ParseVersion returns the requested major/minor version. Both are zero for
// "latest". Versions below 3.3 have no core profile and are rejected.
func (c ContextOptions) ParseVersion() (major, minor int, err error) {
	if c.Version == VersionLatest {
		return 0, 0, nil
	}
	parts := strings.Split(c.Version, ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("context.version must be %q or major.minor, got %q", VersionLatest, c.Version)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("context.version major: %w", err)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("context.version minor: %w", err)
	}
	if major < 3 || (major == 3 && minor < 3) {
		return 0, 0, fmt.Errorf("context.version %s is below the minimum 3.3", c.Version)
	}
	return major, minor, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
