// Package config loads mdindex settings from flags, environment, .env and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lexandro/mdindex/ignore"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "MDINDEX"

const (
	keyRoot           = "root"
	keyExtensions     = "extensions"
	keyExclude        = "exclude"
	keyHTTPAddr       = "http_addr"
	keyMCP            = "mcp"
	keyLogLevel       = "log_level"
	keyLogFile        = "log_file"
	keyResyncInterval = "resync_interval"
	keyConfig         = "config"
)

const DefaultHTTPAddr = "127.0.0.1:7070"

var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds the resolved settings. It is immutable after Load.
type Config struct {
	Root           string
	Extensions     []string
	Exclude        []string
	HTTPAddr       string // empty disables the HTTP server
	MCP            bool
	LogLevel       string
	LogFile        string // empty means stderr
	ResyncInterval time.Duration
	ConfigFile     string
}

// Load parses args (without the program name). Precedence from highest:
// flags, MDINDEX_* environment (including .env), config file, defaults.
// pflag.ErrHelp is returned unwrapped when --help is given.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(keyExtensions, ignore.DefaultExtensions)
	v.SetDefault(keyHTTPAddr, DefaultHTTPAddr)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyResyncInterval, time.Duration(0))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		keyRoot:           "root",
		keyExtensions:     "ext",
		keyExclude:        "exclude",
		keyHTTPAddr:       "http",
		keyMCP:            "mcp",
		keyLogLevel:       "log-level",
		keyLogFile:        "log-file",
		keyResyncInterval: "resync-interval",
		keyConfig:         "config",
	}
	for key, flagName := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			return nil, fmt.Errorf("binding flag --%s: %w", flagName, err)
		}
	}

	configFile := v.GetString(keyConfig)
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Root:           v.GetString(keyRoot),
		Extensions:     splitList(v.GetStringSlice(keyExtensions)),
		Exclude:        v.GetStringSlice(keyExclude),
		HTTPAddr:       strings.TrimSpace(v.GetString(keyHTTPAddr)),
		MCP:            v.GetBool(keyMCP),
		LogLevel:       strings.ToLower(v.GetString(keyLogLevel)),
		LogFile:        v.GetString(keyLogFile),
		ResyncInterval: v.GetDuration(keyResyncInterval),
		ConfigFile:     configFile,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("mdindex", pflag.ContinueOnError)
	flags.String("root", "", "Document root directory (default: current working directory)")
	flags.StringSlice("ext", ignore.DefaultExtensions, "Document file extensions")
	flags.StringArray("exclude", nil, "Extra ignore pattern (repeatable)")
	flags.String("http", DefaultHTTPAddr, "HTTP listen address (empty disables)")
	flags.Bool("mcp", false, "Serve MCP tools over stdio")
	flags.String("log-level", "info", "Log level: debug|info|warn|error")
	flags.String("log-file", "", "Log file path (default: stderr)")
	flags.Duration("resync-interval", 0, "Periodic full rescan interval (0 disables)")
	flags.String("config", "", "Optional config file (yaml, toml or json)")
	return flags
}

func (c *Config) validate() error {
	if c.Root == "" {
		workingDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		c.Root = workingDir
	}
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolving root %s: %w", c.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}
	c.Root = root

	c.Extensions = ignore.NormalizeExtensions(c.Extensions)

	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q, expected one of %s", c.LogLevel, strings.Join(logLevels, "|"))
	}
	if c.ResyncInterval < 0 {
		return fmt.Errorf("resync interval must not be negative, got %s", c.ResyncInterval)
	}
	if c.HTTPAddr == "" && !c.MCP {
		return errors.New("nothing to serve: set an HTTP address or enable MCP")
	}
	return nil
}

// splitList flattens comma-separated entries, as given through a single environment variable.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
