package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":4028"
  public_url: "https://darshan.example.com"
database:
  host: "db"
  port: 5432
  user: "app"
  password: "secret"
  name: "edarshan"
  ssl_mode: "disable"
kafka:
  brokers: ["kafka:9092"]
  booking_topic: "booking-events"
booking:
  max_tickets: 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":4028", cfg.HTTP.Address)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.Booking.MaxTickets)
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=edarshan sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `http: {address: ":4028"}`))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Booking.MaxTickets)
	assert.Equal(t, 2, cfg.Booking.SlotStepHours)
	assert.Equal(t, 120, cfg.Booking.CrowdLowMin)
	assert.Equal(t, 80, cfg.Booking.CrowdMediumMin)
	assert.Equal(t, 3, cfg.Booking.PaymentProcessSeconds)
	assert.Equal(t, 2, cfg.Booking.PaymentConfirmSeconds)
	assert.Equal(t, 10, cfg.Worker.Concurrency)
	assert.Equal(t, 15, cfg.Worker.ExpirationSweepMinutes)
	assert.Equal(t, "*/5 * * * *", cfg.Worker.ExpirySweepCron)
	assert.Equal(t, ":9091", cfg.Worker.MetricsAddress)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
