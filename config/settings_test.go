package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, 8080, s.Server.Port)
	assert.Equal(t, ".", s.Index.Root)
	assert.Equal(t, "./search_data/index.gob", s.Index.SnapshotPath)
	assert.Equal(t, DefaultExtensions, s.Index.Extensions)
	assert.Equal(t, DefaultSkipDirs, s.Index.SkipDirs)
	assert.Equal(t, 4, s.Index.Workers)
	assert.False(t, s.Index.StemTerms)
	assert.Equal(t, int64(16<<20), s.Index.MaxFileBytes)
	assert.Equal(t, 20, s.Search.DefaultPageSize)
	assert.Equal(t, 100, s.Search.MaxPageSize)
	assert.Equal(t, 2, s.Jobs.MaxWorkers)
	assert.True(t, s.Metrics.Enabled)
	assert.Empty(t, s.Validate())
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
server:
  port: 9000
  read_timeout: 5s
index:
  root: /srv/docs
  extensions: [txt, md]
  skip_dirs: []
  stem_terms: true
search:
  max_page_size: 50
logging:
  level: debug
  format: json
metrics:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, s.Server.Port)
	assert.Equal(t, 5*time.Second, s.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, s.Server.WriteTimeout)
	assert.Equal(t, "/srv/docs", s.Index.Root)
	assert.Equal(t, []string{"txt", "md"}, s.Index.Extensions)
	assert.Empty(t, s.Index.SkipDirs, "an explicit empty list disables skipping")
	assert.True(t, s.Index.StemTerms)
	assert.Equal(t, 50, s.Search.MaxPageSize)
	assert.Equal(t, 20, s.Search.DefaultPageSize)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.False(t, s.Metrics.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"TFIDF_SERVER_PORT":      "7070",
		"TFIDF_INDEX_ROOT":       "/data",
		"TFIDF_INDEX_EXTENSIONS": "txt, md ,,rst",
		"TFIDF_INDEX_STEM_TERMS": "true",
		"TFIDF_JOBS_MAX_WORKERS": "3",
		"TFIDF_LOGGING_FORMAT":   "json",
		"TFIDF_METRICS_ENABLED":  "false",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	s := Default()
	require.NoError(t, s.applyEnvOverrides(lookup))

	assert.Equal(t, 7070, s.Server.Port)
	assert.Equal(t, "/data", s.Index.Root)
	assert.Equal(t, []string{"txt", "md", "rst"}, s.Index.Extensions)
	assert.True(t, s.Index.StemTerms)
	assert.Equal(t, 3, s.Jobs.MaxWorkers)
	assert.Equal(t, "json", s.Logging.Format)
	assert.False(t, s.Metrics.Enabled)
}

func TestEnvOverrides_InvalidValues(t *testing.T) {
	lookup := func(name string) (string, bool) {
		switch name {
		case "TFIDF_SERVER_PORT":
			return "eighty", true
		case "TFIDF_INDEX_STEM_TERMS":
			return "maybe", true
		}
		return "", false
	}

	s := Default()
	err := s.applyEnvOverrides(lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TFIDF_SERVER_PORT")
	assert.Contains(t, err.Error(), "TFIDF_INDEX_STEM_TERMS")
	assert.Equal(t, 8080, s.Server.Port)
}

func TestLoad_EnvironmentIsApplied(t *testing.T) {
	t.Setenv("TFIDF_INDEX_SNAPSHOT_PATH", "/tmp/custom.gob")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.gob", s.Index.SnapshotPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(s *Settings)
		expectedErrors int
	}{
		{"defaults are valid", func(s *Settings) {}, 0},
		{"port out of range", func(s *Settings) { s.Server.Port = 70000 }, 1},
		{"no workers", func(s *Settings) { s.Index.Workers = 0 }, 1},
		{"empty extension", func(s *Settings) { s.Index.Extensions = []string{"txt", "."} }, 1},
		{"duplicate extension with dot", func(s *Settings) { s.Index.Extensions = []string{"txt", ".TXT"} }, 1},
		{"duplicate skip dir", func(s *Settings) { s.Index.SkipDirs = []string{".git", ".git"} }, 1},
		{"page sizes inverted", func(s *Settings) { s.Search.DefaultPageSize = 200 }, 1},
		{"unknown log format", func(s *Settings) { s.Logging.Format = "xml" }, 1},
		{"several problems", func(s *Settings) {
			s.Index.SnapshotPath = " "
			s.Jobs.MaxWorkers = -1
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			problems := s.Validate()
			assert.Len(t, problems, tt.expectedErrors, "problems: %v", problems)
		})
	}
}
