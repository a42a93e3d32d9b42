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
	Booking  BookingConfig  `yaml:"booking"`
	Policy   PolicyConfig   `yaml:"policy"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
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

type BookingConfig struct {
	LockTTLSeconds int `yaml:"lock_ttl_seconds"`
	RoutesCacheTTL int `yaml:"routes_cache_ttl_seconds"`
}

type WorkerConfig struct {
	CompletionSweepMinutes int `yaml:"completion_sweep_minutes"`
}

// PolicyConfig carries the charter-terms rate tables. Zero values mean
// "use the published defaults"; see policy.NewRateTable.
type PolicyConfig struct {
	DiscountPercent        map[string]int64           `yaml:"discount_percent"`
	CancellationWindows    []CancellationWindowConfig `yaml:"cancellation_windows"`
	CustomerCancelLimit    int                        `yaml:"customer_cancel_limit"`
	OperatorCancelLimit    int                        `yaml:"operator_cancel_limit"`
	PerOperatorDiscountCap int                        `yaml:"per_operator_discount_cap"`
	TotalDiscountCap       int                        `yaml:"total_discount_cap"`
	Baggage                map[string]BaggageConfig   `yaml:"baggage"`
}

// CancellationWindowConfig is one bucket of the cancellation table, ordered by
// ascending time to departure. MaxHours 0 marks the open-ended top bucket.
type CancellationWindowConfig struct {
	MaxHours   int   `yaml:"max_hours"`
	PenaltyPct int64 `yaml:"penalty_pct"`
	RefundPct  int64 `yaml:"refund_pct"`
}

type BaggageConfig struct {
	CheckedBags int `yaml:"checked_bags"`
	CargoKg     int `yaml:"cargo_kg"`
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

	// a zero sweep interval would panic time.NewTicker in the worker
	if cfg.Worker.CompletionSweepMinutes <= 0 {
		cfg.Worker.CompletionSweepMinutes = 5
	}

	return &cfg, nil
}
