package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Scan batch over the configured domains file, daily at 6am
	CronScheduleScanBatch string `env:"CRON_SCHEDULE_SCAN_BATCH" envDefault:"0 0 6 * * *"`
	// Calendly booking sync, every hour
	CronScheduleCalendlySync string `env:"CRON_SCHEDULE_CALENDLY_SYNC" envDefault:"0 0 * * * *"`
	// Sending-domain health check, daily at midnight
	CronScheduleInboxHealth string `env:"CRON_SCHEDULE_INBOX_HEALTH" envDefault:"0 0 0 * * *"`
}
