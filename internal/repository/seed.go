package repository

import "github.com/Zanvi/lacasabarber/internal/storage/models"

// DefaultServices возвращает каталог услуг, которым заполняется пустое хранилище
func DefaultServices() []models.Service {
	return []models.Service{
		{ID: "1", Name: "Corte masculino", Price: 40.00, Duration: "30 min", Description: "Corte degradê, social ou militar.", Active: true},
		{ID: "2", Name: "Barba", Price: 20.00, Duration: "30 min", Description: "Barba modelada com toalha quente.", Active: true},
		{ID: "3", Name: "Sobrancelha", Price: 20.00, Duration: "15 min", Description: "Design na navalha.", Active: true},
		{ID: "4", Name: "Pezinho", Price: 20.00, Duration: "15 min", Description: "Acabamento do corte.", Active: true},
		{ID: "5", Name: "Corte + Barba", Price: 55.00, Duration: "60 min", Description: "Combo completo.", Active: true},
		{ID: "6", Name: "Infantil", Price: 35.00, Duration: "30 min", Description: "Para crianças até 12 anos.", Active: true},
		{ID: "7", Name: "Luzes", Price: 120.00, Duration: "90 min", Description: "Reflexos ou luzes no papel.", Active: true},
		{ID: "8", Name: "Platinado", Price: 150.00, Duration: "120 min", Description: "Descoloração global.", Active: true},
	}
}
