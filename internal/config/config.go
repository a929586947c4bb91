package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/internal/objects"
)

// DefaultFile is read from the working directory when no config file is named.
const DefaultFile = ".commitgraph.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COMMITGRAPH_"

// DefaultOutputPath is the output file name without extension.
const DefaultOutputPath = "commit_graph"

var ErrInvalidConfig = errors.New("invalid configuration")

// SupportedFormats lists the output formats accepted by the graph command.
var SupportedFormats = []string{"png", "svg", "pdf", "jpg", constants.DOTFormat}

// Config holds the settings of a graph run.
type Config struct {
	RepoPath     string   `toml:"repo_path"`
	OutputPath   string   `toml:"output_path"`
	GraphvizPath string   `toml:"graphviz_path"`
	Branch       string   `toml:"branch"`
	Format       string   `toml:"format"`
	Workers      int      `toml:"workers"`
	CacheSize    int      `toml:"cache_size"`
	Verify       bool     `toml:"verify"`
	Exclude      []string `toml:"exclude"`
}

func Default() *Config {
	return &Config{
		OutputPath: DefaultOutputPath,
		Format:     constants.DefaultFormat,
		CacheSize:  objects.DefaultCacheSize,
	}
}

// Load builds a Config from defaults, the TOML file at path (or DefaultFile
// when path is empty and the file exists) and COMMITGRAPH_* variables.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if err := cfg.decodeFile(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	for _, key := range meta.Undecoded() {
		slog.Warn("Ignoring unknown config key", "file", path, "key", key.String())
	}
	slog.Debug("Loaded config file", "file", path)
	return nil
}

func (c *Config) applyEnv() error {
	stringVars := map[string]*string{
		"REPO_PATH":     &c.RepoPath,
		"OUTPUT_PATH":   &c.OutputPath,
		"GRAPHVIZ_PATH": &c.GraphvizPath,
		"BRANCH":        &c.Branch,
		"FORMAT":        &c.Format,
	}
	for name, target := range stringVars {
		if value, ok := lookupEnv(name); ok {
			*target = value
		}
	}

	intVars := map[string]*int{
		"WORKERS":    &c.Workers,
		"CACHE_SIZE": &c.CacheSize,
	}
	for name, target := range intVars {
		value, ok := lookupEnv(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, EnvPrefix, name, value)
		}
		*target = n
	}

	if value, ok := lookupEnv("VERIFY"); ok {
		verify, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %sVERIFY=%q is not a boolean", ErrInvalidConfig, EnvPrefix, value)
		}
		c.Verify = verify
	}

	if value, ok := lookupEnv("EXCLUDE"); ok {
		c.Exclude = splitList(value)
	}
	return nil
}

// Validate rejects repository and reader settings no command can run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RepoPath) == "" {
		return fmt.Errorf("%w: repository path is required", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache size must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ValidateOutput rejects render settings; only the graph command produces output.
func (c *Config) ValidateOutput() error {
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidConfig)
	}
	if !slices.Contains(SupportedFormats, strings.ToLower(c.Format)) {
		return fmt.Errorf("%w: unsupported format %q (want one of %s)",
			ErrInvalidConfig, c.Format, strings.Join(SupportedFormats, ", "))
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
