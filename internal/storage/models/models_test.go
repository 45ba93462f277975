package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceActiveDefaultsToTrue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"поле отсутствует", `{"id":"1","name":"Barba","price":20}`, true},
		{"null", `{"id":"1","name":"Barba","price":20,"active":null}`, true},
		{"true", `{"id":"1","name":"Barba","price":20,"active":true}`, true},
		{"false", `{"id":"1","name":"Barba","price":20,"active":false}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Service
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.Equal(t, tt.want, s.Active)
		})
	}
}

func TestStatusLabelsAreExhaustive(t *testing.T) {
	want := map[AppointmentStatus]string{
		StatusConfirmed:   "Confirmado",
		StatusPending:     "Pendente",
		StatusCancelled:   "Cancelado",
		StatusCompleted:   "Concluído",
		StatusRescheduled: "Reagendado",
	}

	require.Len(t, AllStatuses, len(want))
	for _, s := range AllStatuses {
		assert.True(t, s.Valid())
		assert.Equal(t, want[s], s.Label())
	}
}

func TestAppointmentStatusRejectsUnknown(t *testing.T) {
	var apt Appointment
	err := json.Unmarshal([]byte(`{"id":"a","status":"archived"}`), &apt)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","status":"rescheduled","originalDate":"2024-06-01"}`), &apt))
	assert.True(t, apt.WasRescheduled())
}

func TestAppointmentJSONFieldNames(t *testing.T) {
	apt := Appointment{
		ID:           "a1",
		UserID:       "11999998888",
		ServiceName:  "Barba",
		ServicePrice: 20,
		Date:         "2024-06-01",
		Time:         "10:00",
		Status:       StatusConfirmed,
		CreatedAt:    1717236000000,
	}

	data, err := json.Marshal(apt)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "11999998888", raw["userId"])
	assert.Equal(t, float64(20), raw["servicePrice"])
	assert.Equal(t, float64(1717236000000), raw["createdAt"])
	assert.NotContains(t, raw, "originalDate")
}
