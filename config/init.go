package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/tracing"
)

type Config struct {
	AppConfig      *AppConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
	DatabaseConfig *DatabaseConfig
	ScannerConfig  *ScannerConfig
	OutreachConfig *OutreachConfig
	SmtpConfig     *SmtpConfig
	CalendlyConfig *CalendlyConfig
	SnapshotConfig *SnapshotConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:      &AppConfig{},
		Logger:         &logger.Config{},
		Tracing:        &tracing.JaegerConfig{},
		DatabaseConfig: &DatabaseConfig{},
		ScannerConfig:  &ScannerConfig{},
		OutreachConfig: &OutreachConfig{},
		SmtpConfig:     &SmtpConfig{},
		CalendlyConfig: &CalendlyConfig{},
		SnapshotConfig: &SnapshotConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading techscan config: %v", err)
	}

	return config, nil
}
