package models

// Season is a display-only month bucket. It is never sent to the model.
type Season string

const (
	SeasonWinter  Season = "winter"
	SeasonSpring  Season = "spring"
	SeasonSummer  Season = "summer"
	SeasonAutumn  Season = "autumn"
	SeasonUnknown Season = "unknown"
)

func (s Season) Label() string {
	switch s {
	case SeasonWinter:
		return "Invierno"
	case SeasonSpring:
		return "Primavera"
	case SeasonSummer:
		return "Verano"
	case SeasonAutumn:
		return "Otoño"
	default:
		return "Desconocida"
	}
}
