package config

import (
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/minject/errors"
	"github.com/kbukum/minject/logger"
)

// FileSystem abstracts the file operations of the loader for tests.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

func (RealFileSystem) Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func (RealFileSystem) LoadEnv(p string) error {
	return godotenv.Load(p)
}

// Resolver finds the config and env files of a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths. Empty
// paths mean nothing was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, or searches for each
// missing one. Directories are tried from the most specific
// (cmd/<service>) to the working directory, one and two levels up included.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	dirs := searchDirs(serviceName)

	if files.ConfigFile == "" {
		files.ConfigFile = r.first(dirs, "config.yml", "config.yaml")
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(dirs, ".env."+serviceName, ".env")
	}
	return files
}

// first returns the first existing file, trying every name in a directory
// before moving to the next.
func (r *Resolver) first(dirs []string, names ...string) string {
	for _, dir := range dirs {
		for _, name := range names {
			p := path.Join(dir, name)
			if dir == "." {
				p = "./" + name
			} else if !strings.HasPrefix(p, ".") {
				p = "./" + p
			}
			if r.FileSystem.Exists(p) {
				return p
			}
		}
	}
	return ""
}

func searchDirs(serviceName string) []string {
	names := []string{serviceName}
	if i := strings.LastIndex(serviceName, "-"); i != -1 && i < len(serviceName)-1 {
		names = append(names, serviceName[i+1:])
	}

	var rel []string
	for _, n := range names {
		rel = append(rel, "cmd/"+n, "config/"+n)
	}
	rel = append(rel, "config", ".")

	dirs := make([]string, 0, len(rel)*3)
	for _, up := range []string{".", "..", "../.."} {
		for _, r := range rel {
			dirs = append(dirs, path.Join(up, r))
		}
	}
	return dirs
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string // Only bind variables starting with PREFIX_ (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(p string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = p }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(p string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = p }
}

// WithEnvPrefix restricts environment binding to variables named
// PREFIX_..., with the prefix stripped before mapping to config keys.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(strings.ToUpper(prefix), "_") }
}

// Load reads the Config of a service, applies defaults and validates it.
// serviceName is used as service.name when the files leave it unset.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Service.Name == "" {
		cfg.Service.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration for a service into cfg. Environment
// variables override the YAML file. The .env file only adds variables that
// are not already set in the environment.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(serviceName, lc)
	v := viper.New()

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("Failed to load config file", logger.MergeWithError(logger.Fields("file", files.ConfigFile), err))
		}
	}

	bindEnv(v, lc.EnvPrefix)

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("Failed to load .env file", logger.MergeWithError(logger.Fields("file", files.EnvFile), err))
		} else {
			bindEnv(v, lc.EnvPrefix)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return errors.InvalidInput("config", fmt.Sprintf("failed to unmarshal config for service %s", serviceName)).WithCause(err)
	}
	return nil
}

// bindEnv sets every environment variable on v under each key it may stand
// for. With a prefix only PREFIX_* variables are used, without the prefix.
func bindEnv(v *viper.Viper, prefix string) {
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if prefix != "" {
			rest, found := strings.CutPrefix(name, prefix+"_")
			if !found || rest == "" {
				continue
			}
			name = rest
		}
		for _, key := range envKeys(name) {
			v.Set(key, value)
		}
	}
}

// maxEnvSegments bounds the variants generated per variable.
const maxEnvSegments = 6

// envKeys lists the config keys an environment variable name may map to:
// every way of splitting its underscore separated words into nested keys.
// Keys themselves may contain underscores, so OBSERVABILITY_SAMPLE_RATE
// yields observability.sample_rate as well as observability.sample.rate.
//
//	SERVICE_NAME -> service_name, service.name
func envKeys(name string) []string {
	lower := strings.ToLower(name)
	words := strings.Split(lower, "_")
	if slices.Contains(words, "") {
		return []string{lower}
	}
	if len(words) > maxEnvSegments {
		return []string{strings.Join(words, "_"), strings.Join(words, ".")}
	}

	var out []string
	var walk func(i int, key string)
	walk = func(i int, key string) {
		if i == len(words) {
			out = append(out, key)
			return
		}
		walk(i+1, key+"_"+words[i])
		walk(i+1, key+"."+words[i])
	}
	walk(1, words[0])
	return out
}
