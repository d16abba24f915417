package services

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMW renders a demand value rounded to whole megawatts with comma
// thousands separators, e.g. "28,000 MW".
func FormatMW(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "- MW"
	}
	return printer.Sprintf("%d MW", int64(math.RoundToEven(v)))
}
