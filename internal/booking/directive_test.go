package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zanvi/lacasabarber/pkg/errors"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantText  string
		wantFound bool
		want      *Directive
		wantErr   bool
	}{
		{
			name:     "без директивы",
			input:    "Temos horários às 10:00 e 11:00.",
			wantText: "Temos horários às 10:00 e 11:00.",
		},
		{
			name:      "директива в конце",
			input:     `Fechado! Te espero. [BOOKING_CONFIRMED: {"service": "Barba", "date": "2024-06-01", "time": "10:00"}]`,
			wantText:  "Fechado! Te espero.",
			wantFound: true,
			want:      &Directive{Service: "Barba", Date: "2024-06-01", Time: "10:00"},
		},
		{
			name:      "директива посередине",
			input:     `Perfeito. [BOOKING_CONFIRMED:{"service":"Corte masculino","date":"2024-06-02","time":"09:30"}] Até lá!`,
			wantText:  "Perfeito.  Até lá!",
			wantFound: true,
			want:      &Directive{Service: "Corte masculino", Date: "2024-06-02", Time: "09:30"},
		},
		{
			name:      "только директива",
			input:     `[BOOKING_CONFIRMED: {"service":"Luzes","date":"2024-06-01","time":"14:00"}]`,
			wantText:  "",
			wantFound: true,
			want:      &Directive{Service: "Luzes", Date: "2024-06-01", Time: "14:00"},
		},
		{
			name:      "скобки внутри строки",
			input:     `Ok [BOOKING_CONFIRMED: {"service":"Combo {especial}]","date":"2024-06-01","time":"14:00"}]`,
			wantText:  "Ok",
			wantFound: true,
			want:      &Directive{Service: "Combo {especial}]", Date: "2024-06-01", Time: "14:00"},
		},
		{
			name:      "экранированная кавычка",
			input:     `[BOOKING_CONFIRMED: {"service":"Corte \"na régua\"","date":"2024-06-01","time":"14:00"}] ok`,
			wantText:  "ok",
			wantFound: true,
			want:      &Directive{Service: `Corte "na régua"`, Date: "2024-06-01", Time: "14:00"},
		},
		{
			name:      "первая из двух",
			input:     `[BOOKING_CONFIRMED: {"service":"Barba","date":"2024-06-01","time":"10:00"}] e [BOOKING_CONFIRMED: {"service":"Luzes","date":"2024-06-01","time":"11:00"}]`,
			wantText:  `e [BOOKING_CONFIRMED: {"service":"Luzes","date":"2024-06-01","time":"11:00"}]`,
			wantFound: true,
			want:      &Directive{Service: "Barba", Date: "2024-06-01", Time: "10:00"},
		},
		{
			name:      "незакрытый префикс перед полной директивой",
			input:     `[BOOKING_CONFIRMED: pendente. [BOOKING_CONFIRMED: {"service":"Barba","date":"2024-06-01","time":"10:00"}]`,
			wantText:  "[BOOKING_CONFIRMED: pendente.",
			wantFound: true,
			want:      &Directive{Service: "Barba", Date: "2024-06-01", Time: "10:00"},
		},
		{
			name:     "перенос строки внутри директивы",
			input:    "[BOOKING_CONFIRMED: {\"service\":\"Barba\",\n\"date\":\"2024-06-01\",\"time\":\"10:00\"}]",
			wantText: "[BOOKING_CONFIRMED: {\"service\":\"Barba\",\n\"date\":\"2024-06-01\",\"time\":\"10:00\"}]",
		},
		{
			name:      "некорректный JSON",
			input:     `Fechado! [BOOKING_CONFIRMED: {service: Barba}]`,
			wantText:  `Fechado! [BOOKING_CONFIRMED: {service: Barba}]`,
			wantFound: true,
			wantErr:   true,
		},
		{
			name:      "нет поля time",
			input:     `Fechado! [BOOKING_CONFIRMED: {"service":"Barba","date":"2024-06-01"}]`,
			wantText:  `Fechado! [BOOKING_CONFIRMED: {"service":"Barba","date":"2024-06-01"}]`,
			wantFound: true,
			wantErr:   true,
		},
		{
			name:      "неверный формат даты",
			input:     `[BOOKING_CONFIRMED: {"service":"Barba","date":"01/06/2024","time":"10:00"}]`,
			wantText:  `[BOOKING_CONFIRMED: {"service":"Barba","date":"01/06/2024","time":"10:00"}]`,
			wantFound: true,
			wantErr:   true,
		},
		{
			name:      "число вместо строки",
			input:     `[BOOKING_CONFIRMED: {"service":"Barba","date":"2024-06-01","time":1000}]`,
			wantText:  `[BOOKING_CONFIRMED: {"service":"Barba","date":"2024-06-01","time":1000}]`,
			wantFound: true,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := Extract(tt.input)

			assert.Equal(t, tt.wantText, ex.Text)
			assert.Equal(t, tt.wantFound, ex.Found())
			assert.Equal(t, tt.want, ex.Directive)
			if tt.wantErr {
				assert.True(t, errors.Is(ex.Err, errors.ErrMalformedDirective))
			} else {
				assert.NoError(t, ex.Err)
			}
		})
	}
}

func TestExtractRoundTrip(t *testing.T) {
	directives := []Directive{
		{Service: "Corte + Barba", Date: "2024-06-01", Time: "15:30"},
		{Service: "Sobrancelha <navalha> & pezinho", Date: "2030-12-31", Time: "23:59"},
		{Service: "Linha1\nLinha2", Date: "2001-01-01", Time: "00:00"},
		{Service: `barra \ invertida }]`, Date: "2024-02-29", Time: "08:05"},
	}

	for _, d := range directives {
		t.Run(d.Service, func(t *testing.T) {
			ex := Extract("Confirmado! " + d.String() + " Obrigado.")
			require.NoError(t, ex.Err)
			require.NotNil(t, ex.Directive)
			assert.Equal(t, d, *ex.Directive)
			assert.Equal(t, "Confirmado!  Obrigado.", ex.Text)
		})
	}
}

func TestExtractIsIdempotentOnPlainText(t *testing.T) {
	inputs := []string{"", "   ", "Olá!", "  espaço nas bordas  ", "[BOOKING_CONFIRMED"}
	for _, in := range inputs {
		ex := Extract(in)
		assert.Equal(t, in, ex.Text)
		assert.Nil(t, ex.Directive)
		assert.False(t, ex.Found())
	}
}
