package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `
service_name = "pricing"

[database]
dsn = "user:pass@tcp(localhost:3306)/pricing?parseTime=true"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "pricing", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.Environment)
	// 未显式配置的节取默认值
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 1000, cfg.Pricing.DefaultSteps)
	assert.GreaterOrEqual(t, cfg.Pricing.MaxSteps, cfg.Pricing.DefaultSteps)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
[pricing]
default_steps = 500
max_steps = 20000
outbox_interval = 200
`))
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Pricing.DefaultSteps)
	assert.Equal(t, 20000, cfg.Pricing.MaxSteps)
	assert.Equal(t, 200, cfg.Pricing.OutboxInterval)
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing service name", `
[database]
dsn = "dsn"
`},
		{"missing dsn", `
service_name = "pricing"
`},
		{"max steps below default", minimalConfig + `
[pricing]
default_steps = 1000
max_steps = 10
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
