package models

import "time"

// HistoricalObservation is one row of observed demand. Weekday is derived from
// Fecha at load time (1 = Monday … 7 = Sunday).
type HistoricalObservation struct {
	Fecha      time.Time `gorm:"column:fecha;primaryKey" json:"fecha"`
	Year       int       `gorm:"column:year" json:"year"`
	Month      int       `gorm:"column:mes" json:"mes"`
	Hour       int       `gorm:"column:hora" json:"hora"`
	Weekday    int       `gorm:"-" json:"dia_semana"`
	DemandReal float64   `gorm:"column:demanda_real" json:"demanda_real"`
}

func (HistoricalObservation) TableName() string { return "demanda_historica" }
