package config

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/tracing"
)

type AppConfig struct {
	APIPort     string `env:"PORT" envDefault:"11000"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	Logger      *logger.Config
	Tracing     *tracing.JaegerConfig
}

type DatabaseConfig struct {
	Host            string `env:"TECHSCAN_POSTGRES_HOST,required"`
	Port            string `env:"TECHSCAN_POSTGRES_PORT,required"`
	User            string `env:"TECHSCAN_POSTGRES_USER,required"`
	DBName          string `env:"TECHSCAN_POSTGRES_DB_NAME,required"`
	Password        string `env:"TECHSCAN_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"TECHSCAN_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"TECHSCAN_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"TECHSCAN_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"TECHSCAN_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"TECHSCAN_POSTGRES_SSL_MODE"`
}

type ScannerConfig struct {
	MaxWorkers          int    `env:"SCANNER_MAX_WORKERS" envDefault:"4"`
	RescanAfterDays     int    `env:"SCANNER_RESCAN_AFTER_DAYS" envDefault:"30"`
	FetchTimeoutSeconds int    `env:"SCANNER_FETCH_TIMEOUT_SECONDS" envDefault:"15"`
	CatalogFile         string `env:"CATALOG_FILE"`
	DomainsFile         string `env:"SCANNER_DOMAINS_FILE"`
	// JSON object of category to score multiplier, e.g. {"ecommerce": 2.0}
	SpecializationWeights string `env:"SPECIALIZATION_WEIGHTS_JSON"`
}

func (c *ScannerConfig) RescanAfter() time.Duration {
	return time.Duration(c.RescanAfterDays) * 24 * time.Hour
}

func (c *ScannerConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Multipliers parses the specialization weights into the scorer's input
// shape. An empty value means no specialization.
func (c *ScannerConfig) Multipliers() (map[enum.TechCategory]float64, error) {
	if c.SpecializationWeights == "" {
		return nil, nil
	}
	raw := map[string]float64{}
	if err := json.Unmarshal([]byte(c.SpecializationWeights), &raw); err != nil {
		return nil, errors.Wrap(err, "invalid SCANNER_SPECIALIZATION_WEIGHTS")
	}
	out := make(map[enum.TechCategory]float64, len(raw))
	for category, multiplier := range raw {
		if multiplier <= 0 {
			return nil, errors.Errorf("invalid multiplier %f for category %s", multiplier, category)
		}
		out[enum.DecodeTechCategory(category)] = multiplier
	}
	return out, nil
}

type OutreachConfig struct {
	// JSON array of personas; empty means the built-in roster
	Personas string `env:"PERSONAS_JSON"`
	// JSON array of message variants; empty means the built-in set
	Variants string `env:"VARIANTS_JSON"`
	// 0 means lifetime usage counters
	RotationWindow     time.Duration `env:"VARIANT_ROTATION_WINDOW" envDefault:"0"`
	MaxSupportingTechs int           `env:"MAX_SUPPORTING_TECHS" envDefault:"2"`
}

type SmtpConfig struct {
	// JSON document with the inbox roster, {"inboxes": [...]}
	Accounts    string `env:"SMTP_ACCOUNTS_JSON"`
	SendEnabled bool   `env:"SEND_ENABLED" envDefault:"false"`
}

type CalendlyConfig struct {
	APIToken     string `env:"CALENDLY_API_TOKEN"`
	LookbackDays int    `env:"CALENDLY_LOOKBACK_DAYS" envDefault:"7"`
}

func (c *CalendlyConfig) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

type SnapshotConfig struct {
	Enabled bool `env:"SNAPSHOTS_ENABLED" envDefault:"false"`
	// "r2" or "s3"
	Provider        string `env:"SNAPSHOTS_PROVIDER" envDefault:"r2"`
	Bucket          string `env:"SNAPSHOTS_BUCKET" envDefault:"techscan-snapshots"`
	R2AccountID     string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"SNAPSHOTS_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"SNAPSHOTS_ACCESS_KEY_SECRET"`
	AWSRegion       string `env:"AWS_REGION" envDefault:"us-east-1"`
}
