// Package config provides the configuration of the TF-IDF search service.
// Settings are read from YAML, overridden by TFIDF_* environment variables and
// finally by command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the top-level configuration.
type Settings struct {
	Server  ServerSettings  `yaml:"server" json:"server"`
	Index   IndexSettings   `yaml:"index" json:"index"`
	Search  SearchSettings  `yaml:"search" json:"search"`
	Jobs    JobSettings     `yaml:"jobs" json:"jobs"`
	Logging LoggingSettings `yaml:"logging" json:"logging"`
	Metrics MetricsSettings `yaml:"metrics" json:"metrics"`
}

// ServerSettings holds HTTP server settings.
type ServerSettings struct {
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxRequestBytes int64         `yaml:"max_request_bytes" json:"max_request_bytes"`
}

// IndexSettings describes the corpus and how its files are turned into terms.
// StemTerms applies to both indexing and querying; changing it requires a
// fresh snapshot.
type IndexSettings struct {
	Root         string   `yaml:"root" json:"root"`                     // corpus directory walked on reindex
	SnapshotPath string   `yaml:"snapshot_path" json:"snapshot_path"`   // gob snapshot of the model
	Extensions   []string `yaml:"extensions" json:"extensions"`         // indexed file extensions, without the dot
	SkipDirs     []string `yaml:"skip_dirs" json:"skip_dirs"`           // directory names never descended into
	Workers      int      `yaml:"workers" json:"workers"`               // files read and tokenized concurrently
	StemTerms    bool     `yaml:"stem_terms" json:"stem_terms"`         // english Porter2 stemming
	MaxFileBytes int64    `yaml:"max_file_bytes" json:"max_file_bytes"` // larger files are skipped
}

// SearchSettings controls result paging.
type SearchSettings struct {
	DefaultPageSize int `yaml:"default_page_size" json:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size" json:"max_page_size"`
}

// JobSettings controls background jobs.
type JobSettings struct {
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`
}

// LoggingSettings controls structured logging level and output format.
type LoggingSettings struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsSettings toggles the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// DefaultExtensions are the file extensions indexed when none are configured.
var DefaultExtensions = []string{
	"txt", "md", "html", "htm", "xhtml", "xml",
	"go", "rs", "py", "js", "json", "yaml", "yml", "csv", "log",
}

// DefaultSkipDirs are directory names skipped when none are configured.
var DefaultSkipDirs = []string{".git", "node_modules", "vendor"}

// Default returns the settings used when no file is given.
func Default() *Settings {
	s := &Settings{
		Index:   IndexSettings{Root: "."},
		Metrics: MetricsSettings{Enabled: true},
	}
	s.ApplyDefaults()
	return s
}

// Load reads a YAML file (if path is not empty) over the defaults and applies
// environment overrides.
func Load(path string) (*Settings, error) {
	settings := Default()
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path is an operator-supplied flag
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := settings.applyEnvOverrides(os.LookupEnv); err != nil {
		return nil, err
	}
	settings.ApplyDefaults()
	return settings, nil
}

// applyEnvOverrides reads TFIDF_* variables through lookup.
func (s *Settings) applyEnvOverrides(lookup func(string) (string, bool)) error {
	var errs []string
	intVar := func(name string, dst *int) {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				return
			}
			*dst = n
		}
	}
	stringVar := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	listVar := func(name string, dst *[]string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = splitList(v)
		}
	}
	boolVar := func(name string, dst *bool) {
		if v, ok := lookup(name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				return
			}
			*dst = b
		}
	}

	intVar("TFIDF_SERVER_PORT", &s.Server.Port)
	stringVar("TFIDF_INDEX_ROOT", &s.Index.Root)
	stringVar("TFIDF_INDEX_SNAPSHOT_PATH", &s.Index.SnapshotPath)
	listVar("TFIDF_INDEX_EXTENSIONS", &s.Index.Extensions)
	listVar("TFIDF_INDEX_SKIP_DIRS", &s.Index.SkipDirs)
	intVar("TFIDF_INDEX_WORKERS", &s.Index.Workers)
	boolVar("TFIDF_INDEX_STEM_TERMS", &s.Index.StemTerms)
	intVar("TFIDF_SEARCH_DEFAULT_PAGE_SIZE", &s.Search.DefaultPageSize)
	intVar("TFIDF_SEARCH_MAX_PAGE_SIZE", &s.Search.MaxPageSize)
	intVar("TFIDF_JOBS_MAX_WORKERS", &s.Jobs.MaxWorkers)
	stringVar("TFIDF_LOGGING_LEVEL", &s.Logging.Level)
	stringVar("TFIDF_LOGGING_FORMAT", &s.Logging.Format)
	boolVar("TFIDF_METRICS_ENABLED", &s.Metrics.Enabled)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment overrides: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ApplyDefaults fills every zero value with its default.
func (s *Settings) ApplyDefaults() {
	if s.Server.Port == 0 {
		s.Server.Port = 8080
	}
	if s.Server.ReadTimeout == 0 {
		s.Server.ReadTimeout = 30 * time.Second
	}
	if s.Server.WriteTimeout == 0 {
		s.Server.WriteTimeout = 30 * time.Second
	}
	if s.Server.ShutdownTimeout == 0 {
		s.Server.ShutdownTimeout = 15 * time.Second
	}
	if s.Server.MaxRequestBytes == 0 {
		s.Server.MaxRequestBytes = 1 << 20
	}

	if s.Index.Root == "" {
		s.Index.Root = "."
	}
	if s.Index.SnapshotPath == "" {
		s.Index.SnapshotPath = "./search_data/index.gob"
	}
	if len(s.Index.Extensions) == 0 {
		s.Index.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if s.Index.SkipDirs == nil {
		s.Index.SkipDirs = append([]string(nil), DefaultSkipDirs...)
	}
	if s.Index.Workers == 0 {
		s.Index.Workers = 4
	}
	if s.Index.MaxFileBytes == 0 {
		s.Index.MaxFileBytes = 16 << 20
	}

	if s.Search.DefaultPageSize == 0 {
		s.Search.DefaultPageSize = 20
	}
	if s.Search.MaxPageSize == 0 {
		s.Search.MaxPageSize = 100
	}

	if s.Jobs.MaxWorkers == 0 {
		s.Jobs.MaxWorkers = 2
	}

	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.Logging.Format == "" {
		s.Logging.Format = "text"
	}
}

// Validate returns one message per problem; an empty result means valid.
func (s *Settings) Validate() []string {
	var problems []string

	if s.Server.Port < 1 || s.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", s.Server.Port))
	}
	if s.Server.MaxRequestBytes < 0 {
		problems = append(problems, "server.max_request_bytes cannot be negative")
	}
	if strings.TrimSpace(s.Index.Root) == "" {
		problems = append(problems, "index.root cannot be empty")
	}
	if strings.TrimSpace(s.Index.SnapshotPath) == "" {
		problems = append(problems, "index.snapshot_path cannot be empty")
	}
	if s.Index.Workers < 1 {
		problems = append(problems, "index.workers must be at least 1")
	}
	if s.Index.MaxFileBytes < 0 {
		problems = append(problems, "index.max_file_bytes cannot be negative")
	}
	for _, ext := range s.Index.Extensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			problems = append(problems, "index.extensions cannot contain empty entries")
			break
		}
	}
	problems = append(problems, checkDuplicates("index.extensions", normalizeExtensions(s.Index.Extensions))...)
	problems = append(problems, checkDuplicates("index.skip_dirs", s.Index.SkipDirs)...)

	if s.Search.DefaultPageSize < 1 {
		problems = append(problems, "search.default_page_size must be at least 1")
	}
	if s.Search.MaxPageSize < s.Search.DefaultPageSize {
		problems = append(problems, "search.max_page_size must not be smaller than search.default_page_size")
	}
	if s.Jobs.MaxWorkers < 1 {
		problems = append(problems, "jobs.max_workers must be at least 1")
	}

	switch strings.ToLower(s.Logging.Format) {
	case "text", "json":
	default:
		problems = append(problems, "logging.format must be 'text' or 'json'")
	}

	return problems
}

// checkDuplicates checks for duplicate values in a slice and returns error messages
func checkDuplicates(fieldName string, values []string) []string {
	var problems []string
	seen := make(map[string]bool)

	for _, v := range values {
		if seen[v] {
			problems = append(problems, "Duplicate value '"+v+"' found in "+fieldName)
		}
		seen[v] = true
	}

	return problems
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
	}
	return out
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
