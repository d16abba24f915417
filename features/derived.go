package features

import "demand-forecast-api/models"

// Weekdays are numbered 1 = Monday … 7 = Sunday throughout the service, the
// same numbering the historical dataset derives from its timestamps.
const (
	Saturday = 6
	Sunday   = 7
)

var dayNames = [...]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func IsWeekend(day int) int {
	if day == Saturday || day == Sunday {
		return 1
	}
	return 0
}

func SeasonOf(month int) models.Season {
	switch month {
	case 12, 1, 2:
		return models.SeasonWinter
	case 3, 4, 5:
		return models.SeasonSpring
	case 6, 7, 8:
		return models.SeasonSummer
	case 9, 10, 11:
		return models.SeasonAutumn
	default:
		return models.SeasonUnknown
	}
}

func DayName(day int) string {
	if day < 1 || day > len(dayNames) {
		return ""
	}
	return dayNames[day-1]
}

func MonthName(month int) string {
	if month < 1 || month > len(monthNames) {
		return ""
	}
	return monthNames[month-1]
}

// Option is a value/label pair for a select input.
type Option struct {
	Value int
	Label string
}

func DayOptions() []Option {
	opts := make([]Option, len(dayNames))
	for i, name := range dayNames {
		opts[i] = Option{Value: i + 1, Label: name}
	}
	return opts
}

func MonthOptions() []Option {
	opts := make([]Option, len(monthNames))
	for i, name := range monthNames {
		opts[i] = Option{Value: i + 1, Label: name}
	}
	return opts
}
