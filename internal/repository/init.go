package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/leadscout/techscan/internal/models"
)

type Repositories struct {
	TechScanRepository        TechScanRepository
	DomainSeenRepository      DomainSeenRepository
	EmailStatRepository       EmailStatRepository
	CalendlyBookingRepository CalendlyBookingRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		TechScanRepository:        NewTechScanRepository(db),
		DomainSeenRepository:      NewDomainSeenRepository(db),
		EmailStatRepository:       NewEmailStatRepository(db),
		CalendlyBookingRepository: NewCalendlyBookingRepository(db),
	}
}

func MigrateDB(db *gorm.DB, maxConn, maxIdleConn, connMaxLifetime int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	err = db.AutoMigrate(
		&models.TechScan{},
		&models.DomainSeen{},
		&models.EmailStat{},
		&models.CalendlyBooking{},
	)
	if err != nil {
		return err
	}

	if maxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(maxIdleConn)
	}
	if maxConn > 0 {
		sqlDB.SetMaxOpenConns(maxConn)
	}
	if connMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Minute)
	}

	return nil
}
