package handlers

import (
	"fmt"
	"strings"

	"github.com/Zanvi/lacasabarber/internal/bot/keyboard"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
)

// Тексты бота
const (
	askContactText   = "Olá! Para agendar seu horário, compartilhe seu telefone pelo botão abaixo."
	invalidPhoneText = "Não consegui ler seu telefone. Toque em \"Compartilhar telefone\" para tentar de novo."
	foreignContact   = "Por favor, compartilhe o seu próprio contato."
	busyText         = "Aguarde, ainda estou respondendo sua mensagem anterior."
	genericErrorText = "Ops, algo deu errado. Tente novamente em instantes."
	adminOnlyText    = "Este comando é exclusivo da barbearia."
	noServicesText   = "No momento não há serviços disponíveis."
	rescheduleUsage  = "Uso: /reagendar <id> <AAAA-MM-DD> <HH:mm>"
	notFoundText     = "Agendamento não encontrado."
	cancelledText    = "Agendamentos cancelados não podem ser alterados."
)

func formatServices(services []models.Service) string {
	if len(services) == 0 {
		return noServicesText
	}
	var b strings.Builder
	b.WriteString("✂️ Nossos serviços:\n")
	for _, s := range services {
		fmt.Fprintf(&b, "\n• %s: R$ %.2f (%s)", s.Name, s.Price, s.Duration)
		if s.Description != "" {
			fmt.Fprintf(&b, "\n  %s", s.Description)
		}
	}
	return b.String()
}

func formatConfirmation(apt models.Appointment, owner string) string {
	return fmt.Sprintf("✅ Agendamento Confirmado!\nAdicionado à agenda do %s\n\n✂️ %s\n📅 %s às %s\n💰 R$ %.2f (%s)\n\nUm lembrete será enviado 1h antes.",
		owner, apt.ServiceName, keyboard.FormatDate(apt.Date), apt.Time, apt.ServicePrice, apt.ServiceDuration)
}

func formatAppointmentCard(apt models.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n", apt.UserName)
	fmt.Fprintf(&b, "✂️ %s | R$ %.2f | %s\n", apt.ServiceName, apt.ServicePrice, apt.ServiceDuration)
	fmt.Fprintf(&b, "📅 %s às %s\n", keyboard.FormatDate(apt.Date), apt.Time)
	fmt.Fprintf(&b, "📞 %s\n", apt.UserPhone)
	fmt.Fprintf(&b, "Status: %s", apt.Status.Label())
	if apt.OriginalDate != "" {
		fmt.Fprintf(&b, "\nHistórico: originalmente %s às %s", keyboard.FormatDate(apt.OriginalDate), apt.OriginalTime)
	}
	fmt.Fprintf(&b, "\nID: %s", apt.ID)
	return b.String()
}
