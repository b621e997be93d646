package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestFromLookup(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		env         map[string]string
		expected    Config
		expectedErr string
	}{
		{
			name: "postgres defaults",
			env: map[string]string{
				"ALLOWED_ORIGINS": "http://localhost:3000, https://arcade.example",
				"JWT_KEY":         "secret",
				"POSTGRES_URL":    "postgres://u:p@localhost/arcade",
			},
			expected: Config{
				AllowedOrigins: []string{"http://localhost:3000", "https://arcade.example"},
				JWTKey:         "secret",
				StorageDriver:  DriverPostgres,
				PostgresURL:    "postgres://u:p@localhost/arcade",
				SQLitePath:     DefaultSQLitePath,
				Addr:           DefaultAddr,
			},
		},
		{
			name: "sqlite with overrides",
			env: map[string]string{
				"ALLOWED_ORIGINS": "http://localhost:3000",
				"JWT_KEY":         "secret",
				"STORAGE_DRIVER":  "sqlite",
				"SQLITE_PATH":     "/tmp/a.db",
				"ADDR":            ":8080",
				"DEBUG":           "true",
			},
			expected: Config{
				AllowedOrigins: []string{"http://localhost:3000"},
				JWTKey:         "secret",
				StorageDriver:  DriverSQLite,
				SQLitePath:     "/tmp/a.db",
				Addr:           ":8080",
				Debug:          true,
			},
		},
		{
			name:        "missing origins",
			env:         map[string]string{"JWT_KEY": "secret", "POSTGRES_URL": "x"},
			expectedErr: "missing environment variable: ALLOWED_ORIGINS",
		},
		{
			name:        "missing jwt key",
			env:         map[string]string{"ALLOWED_ORIGINS": "a", "POSTGRES_URL": "x"},
			expectedErr: "missing environment variable: JWT_KEY",
		},
		{
			name:        "missing postgres url",
			env:         map[string]string{"ALLOWED_ORIGINS": "a", "JWT_KEY": "k"},
			expectedErr: "missing environment variable: POSTGRES_URL",
		},
		{
			name:        "unknown driver",
			env:         map[string]string{"ALLOWED_ORIGINS": "a", "JWT_KEY": "k", "STORAGE_DRIVER": "mysql"},
			expectedErr: `unknown STORAGE_DRIVER "mysql"`,
		},
		{
			name:        "bad debug flag",
			env:         map[string]string{"ALLOWED_ORIGINS": "a", "JWT_KEY": "k", "POSTGRES_URL": "x", "DEBUG": "maybe"},
			expectedErr: `invalid DEBUG "maybe"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := FromLookup(lookupFrom(tc.env))
			if tc.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "pg", Config{StorageDriver: DriverPostgres, PostgresURL: "pg"}.DSN())
	assert.Equal(t, "a.db", Config{StorageDriver: DriverSQLite, SQLitePath: "a.db"}.DSN())
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ARCADE_TEST_ALLOWED=1\n"), 0o600))
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000")
	t.Setenv("JWT_KEY", "k")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Cleanup(func() { os.Unsetenv("ARCADE_TEST_ALLOWED") })

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "1", os.Getenv("ARCADE_TEST_ALLOWED"))
}
