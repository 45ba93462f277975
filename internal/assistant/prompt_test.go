package assistant

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Zanvi/lacasabarber/internal/storage/models"
)

func TestFormatLongDate(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), "sexta-feira, 16 de outubro de 2026"},
		{time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "sábado, 1 de junho de 2024"},
		{time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), "domingo, 3 de março de 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLongDate(tt.date))
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(PromptData{
		Shop: Shop{Name: "LA CASA BARBER", Owner: "Danilo"},
		Services: []models.Service{
			{Name: "Corte masculino", Price: 40, Duration: "30 min"},
			{Name: "Luzes", Price: 120, Duration: "90 min"},
		},
		Now:          time.Date(2024, 6, 1, 9, 5, 0, 0, time.UTC),
		CustomerName: "Lucas",
	})

	assert.Contains(t, prompt, "barbearia LA CASA BARBER.")
	assert.Contains(t, prompt, "Dono: Danilo.")
	assert.Contains(t, prompt, "Hoje é: sábado, 1 de junho de 2024, agora são: 09:05.")
	assert.Contains(t, prompt, "- Corte masculino: R$ 40.00 (30 min)\n- Luzes: R$ 120.00 (90 min)")
	assert.Contains(t, prompt, "O nome do cliente atual é: Lucas.")
	assert.Contains(t, prompt, `[BOOKING_CONFIRMED: {"service": "Nome do Serviço", "date": "YYYY-MM-DD", "time": "HH:mm"}]`)
	assert.False(t, strings.Contains(prompt, "{{"), "остались незаполненные плейсхолдеры")
}
