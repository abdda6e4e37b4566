package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
	PublicURL  string `yaml:"public_url"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type BookingConfig struct {
	MaxTickets            int `yaml:"max_tickets"`
	SlotStepHours         int `yaml:"slot_step_hours"`
	CrowdLowMin           int `yaml:"crowd_low_min"`
	CrowdMediumMin        int `yaml:"crowd_medium_min"`
	DraftTTLMinutes       int `yaml:"draft_ttl_minutes"`
	HoldTTLMinutes        int `yaml:"hold_ttl_minutes"`
	TemplesCacheTTL       int `yaml:"temples_cache_ttl_seconds"`
	PaymentProcessSeconds int `yaml:"payment_process_seconds"`
	PaymentConfirmSeconds int `yaml:"payment_confirm_seconds"`
}

type WorkerConfig struct {
	Concurrency            int    `yaml:"concurrency"`
	ExpirationSweepMinutes int    `yaml:"expiration_sweep_minutes"`
	ExpirySweepCron        string `yaml:"expiry_sweep_cron"`
	MetricsAddress         string `yaml:"metrics_address"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.MaxTickets == 0 {
		c.Booking.MaxTickets = 10
	}
	if c.Booking.SlotStepHours == 0 {
		c.Booking.SlotStepHours = 2
	}
	if c.Booking.CrowdLowMin == 0 {
		c.Booking.CrowdLowMin = 120
	}
	if c.Booking.CrowdMediumMin == 0 {
		c.Booking.CrowdMediumMin = 80
	}
	if c.Booking.DraftTTLMinutes == 0 {
		c.Booking.DraftTTLMinutes = 30
	}
	if c.Booking.HoldTTLMinutes == 0 {
		c.Booking.HoldTTLMinutes = 10
	}
	if c.Booking.PaymentProcessSeconds == 0 {
		c.Booking.PaymentProcessSeconds = 3
	}
	if c.Booking.PaymentConfirmSeconds == 0 {
		c.Booking.PaymentConfirmSeconds = 2
	}
	if c.Worker.Concurrency == 0 {
		c.Worker.Concurrency = 10
	}
	if c.Worker.ExpirationSweepMinutes == 0 {
		c.Worker.ExpirationSweepMinutes = 15
	}
	if c.Worker.ExpirySweepCron == "" {
		c.Worker.ExpirySweepCron = "*/5 * * * *"
	}
	if c.Worker.MetricsAddress == "" {
		c.Worker.MetricsAddress = ":9091"
	}
}
