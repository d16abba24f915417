package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"demand-forecast-api/features"
	"demand-forecast-api/models"
	"demand-forecast-api/services"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const formTemplate = "index.tmpl"

var demandLabels = []struct {
	name  string
	label string
}{
	{models.FeatureDemandLag1, "Demanda hace 1 hora"},
	{models.FeatureDemandLag24, "Demanda hace 24 horas"},
	{models.FeatureDemandLag168, "Demanda hace 7 días"},
	{models.FeatureMovingAvg24h, "Media últimas 24 horas"},
}

func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"mw": services.FormatMW,
	}).ParseFS(templateFS, "templates/*.tmpl")
}

type slider struct {
	Name  string
	Label string
	Value string
}

type formView struct {
	Status       services.Status
	Error        string
	Demands      []slider
	Hour         int
	Month        int
	Weekday      int
	Days         []features.Option
	Months       []features.Option
	Temperatures []slider
	Result       *models.PredictionResult
}

type FormHandler struct {
	svc *services.PredictionService
}

func NewFormHandler(svc *services.PredictionService) *FormHandler {
	return &FormHandler{svc: svc}
}

func (h *FormHandler) Show(c *gin.Context) {
	c.HTML(http.StatusOK, formTemplate, h.view(models.RawInputs{}))
}

func (h *FormHandler) Submit(c *gin.Context) {
	var raw models.RawInputs
	if err := c.ShouldBind(&raw); err != nil {
		view := h.view(models.RawInputs{})
		view.Error = "No se pudo leer el formulario."
		c.HTML(http.StatusBadRequest, formTemplate, view)
		return
	}

	view := h.view(raw)
	result, err := h.svc.Submit(c.Request.Context(), raw)
	switch {
	case errors.Is(err, models.ErrModelUnavailable):
		view.Error = "Modelo no disponible. No se puede calcular la predicción."
		c.HTML(http.StatusServiceUnavailable, formTemplate, view)
		return
	case err != nil:
		klog.ErrorS(err, "Prediction failed")
		view.Error = "Error al calcular la predicción."
		c.HTML(http.StatusInternalServerError, formTemplate, view)
		return
	}

	view.Result = result
	c.HTML(http.StatusOK, formTemplate, view)
}

// view fills the form with the normalized inputs, so fallbacks show up as the
// values actually used.
func (h *FormHandler) view(raw models.RawInputs) formView {
	values := features.Normalize(raw, h.svc.Defaults()).Map()

	v := formView{
		Status:  h.svc.Status(),
		Hour:    int(values[models.FeatureHour]),
		Month:   int(values[models.FeatureMonth]),
		Weekday: int(values[models.FeatureWeekday]),
		Days:    features.DayOptions(),
		Months:  features.MonthOptions(),
	}
	for _, d := range demandLabels {
		v.Demands = append(v.Demands, slider{Name: d.name, Label: d.label, Value: formatValue(values[d.name])})
	}
	for _, r := range models.Regions {
		v.Temperatures = append(v.Temperatures, slider{Name: r.Feature, Label: r.Label, Value: formatValue(values[r.Feature])})
	}
	return v
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
