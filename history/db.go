package history

import (
	"fmt"

	"demand-forecast-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to history database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	return db, nil
}

// LoadDB reads the whole observation table once. Rows without a month are
// completed from fecha.
func LoadDB(db *gorm.DB, table string) (*Dataset, error) {
	if table == "" {
		table = models.HistoricalObservation{}.TableName()
	}

	var rows []models.HistoricalObservation
	if err := db.Table(table).Order("fecha").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	for i := range rows {
		if rows[i].Month == 0 {
			rows[i].Year = rows[i].Fecha.Year()
			rows[i].Month = int(rows[i].Fecha.Month())
			rows[i].Hour = rows[i].Fecha.Hour()
		}
	}
	return NewDataset("postgres:"+table, rows), nil
}
