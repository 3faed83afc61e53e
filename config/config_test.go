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
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 64, cfg.Engine.Workers)
	assert.Equal(t, "none", cfg.Journal.Type)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	with := func(mut func(*Config)) *Config {
		c := Default()
		mut(c)
		return c
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  Default(),
			wantErr: false,
		},
		{
			name:    "missing addr",
			config:  with(func(c *Config) { c.Server.Addr = "" }),
			wantErr: true,
			errMsg:  "server.addr is required",
		},
		{
			name:    "bad read timeout",
			config:  with(func(c *Config) { c.Server.ReadTimeout = "soon" }),
			wantErr: true,
			errMsg:  "server.read_timeout",
		},
		{
			name:    "zero workers",
			config:  with(func(c *Config) { c.Engine.Workers = 0 }),
			wantErr: true,
			errMsg:  "engine.workers must be positive",
		},
		{
			name:    "unknown journal type",
			config:  with(func(c *Config) { c.Journal.Type = "postgres" }),
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name:    "csv without files",
			config:  with(func(c *Config) { c.Journal.Type = "csv" }),
			wantErr: true,
			errMsg:  "transactions_file and balances_file required",
		},
		{
			name:    "sqlite without path",
			config:  with(func(c *Config) { c.Journal.Type = "sqlite" }),
			wantErr: true,
			errMsg:  "db_path required",
		},
		{
			name: "sqlite with path",
			config: with(func(c *Config) {
				c.Journal.Type = "sqlite"
				c.Journal.DBPath = "ledger.db"
			}),
			wantErr: false,
		},
		{
			name:    "unknown log level",
			config:  with(func(c *Config) { c.Log.Level = "loud" }),
			wantErr: true,
			errMsg:  "unknown log.level",
		},
		{
			name:    "unknown log format",
			config:  with(func(c *Config) { c.Log.Format = "xml" }),
			wantErr: true,
			errMsg:  "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeouts(t *testing.T) {
	read, write, err := Default().Server.Timeouts()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, read)
	assert.Equal(t, 10*time.Second, write)

	read, write, err = ServerConfig{}.Timeouts()
	require.NoError(t, err)
	assert.Zero(t, read)
	assert.Zero(t, write)
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Engine.Workers = 8
			cfg.Journal = JournalConfig{Type: "sqlite", DBPath: "audit.db"}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  workers: 4\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LEDGER_ADDR", "127.0.0.1:9000")
	t.Setenv("LEDGER_WORKERS", "3")
	t.Setenv("LEDGER_JOURNAL_TYPE", "sqlite")
	t.Setenv("LEDGER_JOURNAL_DB", "/tmp/ledger.db")
	t.Setenv("LEDGER_LOG_LEVEL", "debug")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Engine.Workers)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.Equal(t, "/tmp/ledger.db", cfg.Journal.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvBadWorkers(t *testing.T) {
	t.Setenv("LEDGER_WORKERS", "many")
	err := Default().ApplyEnv()
	assert.ErrorContains(t, err, "LEDGER_WORKERS")
}
