package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Ingestion.MaxLines)
	assert.Equal(t, ',', cfg.Ingestion.DelimiterRune())
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
server:
  port: 9001
postgres:
  host: db.internal
ingestion:
  maxLines: 50
redis:
  cacheTTL: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("HIRING_POSTGRES_HOST", "override.internal")
	t.Setenv("HIRING_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "override.internal", cfg.Postgres.Host)
	assert.Equal(t, 50, cfg.Ingestion.MaxLines)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.Ingestion.Delimiter = ";;"
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Ingestion.MaxLines = 0
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Topic = ""
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "otlp"
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Tracing.Exporter = "zipkin"
	assert.Error(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host='h' port=5432 user='u' password='p' dbname='d' sslmode='disable'", p.DSN())
}

func TestPostgresDSNParsesAwkwardPasswords(t *testing.T) {
	for _, password := range []string{"", "p@ss word", `it's`, `back\slash`, "a=b c=d"} {
		t.Run(password, func(t *testing.T) {
			p := PostgresConfig{Host: "db", Port: 5432, User: "app", Password: password, Database: "hiring", SSLMode: "disable"}
			parsed, err := pq.NewConfig(p.DSN())
			require.NoError(t, err)
			assert.Equal(t, password, parsed.Password)
			assert.Equal(t, "hiring", parsed.Database)
			assert.Equal(t, "app", parsed.User)
		})
	}
}

func TestLoadDotEnvSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(present, []byte("HIRING_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("HIRING_TEST_DOTENV") })

	n, err := LoadDotEnv(present, filepath.Join(dir, ".env.local"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "loaded", os.Getenv("HIRING_TEST_DOTENV"))
}
