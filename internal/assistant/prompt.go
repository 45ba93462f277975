package assistant

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/Zanvi/lacasabarber/internal/storage/models"
)

//go:embed prompt.tmpl
var promptTemplate string

// Shop описывает барбершоп
type Shop struct {
	Name     string
	Owner    string
	WhatsApp string
	Address  string
}

// PromptData значения для подстановки в шаблон
type PromptData struct {
	Shop         Shop
	Services     []models.Service
	Now          time.Time
	CustomerName string
}

// BuildSystemPrompt заполняет шаблон системной инструкции
func BuildSystemPrompt(data PromptData) string {
	r := strings.NewReplacer(
		"{{SHOP_NAME}}", data.Shop.Name,
		"{{OWNER}}", data.Shop.Owner,
		"{{CURRENT_DATE}}", FormatLongDate(data.Now),
		"{{CURRENT_TIME}}", data.Now.Format("15:04"),
		"{{SERVICES_LIST}}", FormatServiceList(data.Services),
		"{{CUSTOMER_NAME}}", data.CustomerName,
	)
	return r.Replace(promptTemplate)
}

// FormatServiceList форматирует услуги строками "- Nome: R$ 40.00 (30 min)"
func FormatServiceList(services []models.Service) string {
	lines := make([]string, 0, len(services))
	for _, s := range services {
		lines = append(lines, fmt.Sprintf("- %s: R$ %.2f (%s)", s.Name, s.Price, s.Duration))
	}
	return strings.Join(lines, "\n")
}

var weekdays = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

var months = [...]string{
	time.January:   "janeiro",
	time.February:  "fevereiro",
	time.March:     "março",
	time.April:     "abril",
	time.May:       "maio",
	time.June:      "junho",
	time.July:      "julho",
	time.August:    "agosto",
	time.September: "setembro",
	time.October:   "outubro",
	time.November:  "novembro",
	time.December:  "dezembro",
}

// FormatLongDate форматирует дату как "sexta-feira, 16 de outubro de 2026"
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d", weekdays[t.Weekday()], t.Day(), months[t.Month()], t.Year())
}
