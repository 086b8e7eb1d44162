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

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
[server]
http_port = 8083
read_timeout = 15
write_timeout = 15
idle_timeout = 60
shutdown_timeout = 10

[database]
host = "localhost"
port = 5432
user = "calhub"
password = "secret"
dbname = "reassign"
sslmode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = 300

[logs]
file = "logs/app.log"
level = "info"

[metrics]
enabled = true
path = "/metrics"
service_name = "calhub-reassign"

[calendar_service]
url = "http://localhost:8090"
timeout = 10

[notify_service]
url = "http://localhost:8091"
timeout = 10

[reminders]
enabled = true
cron_spec = "* * * * *"
batch_size = 100

[app]
booker_base_url = "https://book.example.com"
`

// TestLoad тестирует загрузку валидной конфигурации
func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 8083, cfg.Server.HTTPPort)
	assert.Equal(t, "host=localhost port=5432 user=calhub password=secret dbname=reassign sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "* * * * *", cfg.Reminders.CronSpec)
	assert.Equal(t, 100, cfg.Reminders.BatchSize)
	assert.Equal(t, "https://book.example.com", cfg.App.BookerBaseURL)
}

// TestLoad_Validation тестирует проверки обязательных полей
func TestLoad_Validation(t *testing.T) {
	t.Run("missing server port", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
[database]
host = "localhost"
dbname = "reassign"
`))
		assert.Error(t, err)
	})

	t.Run("missing database host", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
[server]
http_port = 8083
`))
		assert.Error(t, err)
	})

	t.Run("metrics enabled without path", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
[server]
http_port = 8083

[database]
host = "localhost"
dbname = "reassign"

[metrics]
enabled = true
`))
		assert.Error(t, err)
	})

	t.Run("reminders enabled without cron spec", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
[server]
http_port = 8083

[database]
host = "localhost"
dbname = "reassign"

[reminders]
enabled = true
`))
		assert.Error(t, err)
	})
}

// TestLoad_MissingFile тестирует отсутствующий файл конфигурации
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	assert.Error(t, err)
}
