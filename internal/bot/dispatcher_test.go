package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zanvi/lacasabarber/internal/agenda"
	"github.com/Zanvi/lacasabarber/internal/assistant"
	"github.com/Zanvi/lacasabarber/internal/assistant/assistanttest"
	"github.com/Zanvi/lacasabarber/internal/bot/keyboard"
	"github.com/Zanvi/lacasabarber/internal/bot/service"
	"github.com/Zanvi/lacasabarber/internal/booking"
	"github.com/Zanvi/lacasabarber/internal/chat"
	"github.com/Zanvi/lacasabarber/internal/config"
	"github.com/Zanvi/lacasabarber/internal/events"
	"github.com/Zanvi/lacasabarber/internal/repository"
	"github.com/Zanvi/lacasabarber/internal/storage/memory"
	storagemodels "github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/logger"
)

const (
	clientChat int64 = 1001
	adminChat  int64 = 9001
)

type fakeSender struct {
	mu       sync.Mutex
	messages []*tgbot.SendMessageParams
	answers  []*tgbot.AnswerCallbackQueryParams
}

func (f *fakeSender) SendMessage(_ context.Context, p *tgbot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, p)
	return &models.Message{Text: p.Text}, nil
}

func (f *fakeSender) SendChatAction(context.Context, *tgbot.SendChatActionParams) (bool, error) {
	return true, nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, p *tgbot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, p)
	return true, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Text)
	}
	return out
}

func (f *fakeSender) last() *tgbot.SendMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[len(f.messages)-1]
}

type botFixture struct {
	dispatcher *Dispatcher
	sender     *fakeSender
	repo       *repository.Repository
}

func newBotFixture(t *testing.T, client assistant.Client) *botFixture {
	t.Helper()
	log := logger.Discard()
	repo, err := repository.New(context.Background(), memory.New(), repository.WithLogger(log))
	require.NoError(t, err)

	notifier := events.NewNotifier(nil, log)
	cfg := &config.Config{
		Telegram: config.TelegramConfig{AdminIDs: []int64{adminChat}},
		Shop:     config.ShopConfig{Name: "LA CASA BARBER", Owner: "Danilo", WhatsApp: "5511942572525", Timezone: "America/Sao_Paulo"},
	}
	sender := &fakeSender{}
	svc := service.NewService(service.Deps{
		Sender:  sender,
		Users:   repo,
		Chats:   chat.NewManager(client, repo, booking.NewProcessor(repo, notifier, log), assistant.Shop{Name: cfg.Shop.Name, Owner: cfg.Shop.Owner}, log),
		Catalog: repo,
		Agenda:  agenda.New(repo, notifier, log),
	}, cfg, log).WithClock(func() time.Time { return time.Date(2025, 5, 21, 12, 0, 0, 0, time.UTC) })

	return &botFixture{dispatcher: NewDispatcher(svc, nil, log), sender: sender, repo: repo}
}

func textUpdate(chatID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			Chat: models.Chat{ID: chatID},
			From: &models.User{ID: chatID, FirstName: "Ana"},
			Text: text,
		},
	}
}

func contactUpdate(chatID int64, phone string) *models.Update {
	return &models.Update{
		ID: 2,
		Message: &models.Message{
			Chat: models.Chat{ID: chatID},
			From: &models.User{ID: chatID, FirstName: "Ana"},
			Contact: &models.Contact{
				PhoneNumber: phone,
				FirstName:   "Ana",
				LastName:    "Souza",
				UserID:      chatID,
			},
		},
	}
}

func (f *botFixture) register(t *testing.T, chatID int64) {
	t.Helper()
	f.dispatcher.HandleUpdate(context.Background(), contactUpdate(chatID, "+55 11 99999-0000"))
	require.Contains(t, f.sender.last().Text, "Olá Ana Souza")
}

func TestStartAsksForContactFromUnknownChat(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	f.dispatcher.HandleUpdate(context.Background(), textUpdate(clientChat, "/start"))

	last := f.sender.last()
	assert.Contains(t, last.Text, "compartilhe seu telefone")
	kb, ok := last.ReplyMarkup.(*models.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.Keyboard[0][0].RequestContact)
}

func TestContactRegistersUser(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	f.register(t, clientChat)

	user, ok := f.repo.GetUser("5511999990000")
	require.True(t, ok)
	assert.Equal(t, "Ana Souza", user.Name)
	assert.Equal(t, storagemodels.RoleClient, user.Role)
}

func TestContactRejectsShortPhone(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	f.dispatcher.HandleUpdate(context.Background(), contactUpdate(clientChat, "12345"))
	assert.Contains(t, f.sender.last().Text, "Não consegui ler seu telefone")
}

func TestChatBookingSendsConfirmationCard(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies(
		`Fechado! [BOOKING_CONFIRMED: {"service":"Barba","date":"2025-05-22","time":"10:00"}]`,
	))
	f.register(t, clientChat)

	f.dispatcher.HandleUpdate(context.Background(), textUpdate(clientChat, "quero fazer a barba amanhã às 10"))

	texts := f.sender.texts()
	require.GreaterOrEqual(t, len(texts), 3)
	assert.Equal(t, "Fechado!", texts[len(texts)-2])
	assert.Contains(t, texts[len(texts)-1], "Agendamento Confirmado!")

	kb, ok := f.sender.last().ReplyMarkup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(kb.InlineKeyboard[0][0].URL, "https://wa.me/5511942572525"))

	apts := f.repo.ListAppointments()
	require.Len(t, apts, 1)
	assert.Equal(t, "5511999990000", apts[0].UserPhone)
}

func TestChatFromUnknownChatAsksForContact(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	f.dispatcher.HandleUpdate(context.Background(), textUpdate(clientChat, "olá"))
	assert.Contains(t, f.sender.last().Text, "compartilhe seu telefone")
}

func TestServicesCommand(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	f.dispatcher.HandleUpdate(context.Background(), textUpdate(clientChat, "/servicos"))

	text := f.sender.last().Text
	assert.Contains(t, text, "Corte masculino: R$ 40.00 (30 min)")
	assert.Contains(t, text, "Platinado")
}

func TestAdminCommandsRequireAdminChat(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	f.dispatcher.HandleUpdate(context.Background(), textUpdate(clientChat, "/agenda"))
	assert.Contains(t, f.sender.last().Text, "exclusivo da barbearia")
}

func TestAdminAgendaAndStatusCallback(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	ctx := context.Background()
	apt, err := f.repo.CreateAppointmentFromBooking(ctx, repository.BookingRequest{
		UserID: "5511999990000", UserName: "Ana", ServiceName: "Barba", Date: "2025-05-21", Time: "15:00",
	})
	require.NoError(t, err)

	f.dispatcher.HandleUpdate(ctx, textUpdate(adminChat, "/agenda"))
	texts := f.sender.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "21/05/2025: 1 agendamento(s)")
	assert.Contains(t, texts[1], "Status: Confirmado")

	kb, ok := f.sender.last().ReplyMarkup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, keyboard.StatusCallbackData(apt.ID, storagemodels.StatusCompleted), kb.InlineKeyboard[0][0].CallbackData)

	f.dispatcher.HandleUpdate(ctx, &models.Update{
		ID: 3,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			From: models.User{ID: adminChat},
			Data: keyboard.StatusCallbackData(apt.ID, storagemodels.StatusCompleted),
		},
	})

	updated, ok := f.repo.GetAppointment(apt.ID)
	require.True(t, ok)
	assert.Equal(t, storagemodels.StatusCompleted, updated.Status)
	require.Len(t, f.sender.answers, 1)
	assert.Equal(t, "Status: Concluído", f.sender.answers[0].Text)
}

func TestStatusCallbackFromClientIsRejected(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	ctx := context.Background()
	apt, err := f.repo.CreateAppointmentFromBooking(ctx, repository.BookingRequest{
		UserID: "x", UserName: "Ana", ServiceName: "Barba", Date: "2025-05-21", Time: "15:00",
	})
	require.NoError(t, err)

	f.dispatcher.HandleUpdate(ctx, &models.Update{
		ID: 4,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-2",
			From: models.User{ID: clientChat},
			Data: keyboard.StatusCallbackData(apt.ID, storagemodels.StatusCancelled),
		},
	})

	current, _ := f.repo.GetAppointment(apt.ID)
	assert.Equal(t, storagemodels.StatusConfirmed, current.Status)
}

func TestAdminReschedule(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	ctx := context.Background()
	apt, err := f.repo.CreateAppointmentFromBooking(ctx, repository.BookingRequest{
		UserID: "x", UserName: "Ana", ServiceName: "Barba", Date: "2025-05-21", Time: "15:00",
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		text     string
		wantText string
	}{
		{name: "usage", text: "/reagendar " + apt.ID, wantText: "Uso: /reagendar"},
		{name: "bad time", text: "/reagendar " + apt.ID + " 2025-05-22 25h", wantText: "Uso: /reagendar"},
		{name: "unknown id", text: "/reagendar nope 2025-05-22 11:00", wantText: "não encontrado"},
		{name: "ok", text: "/reagendar " + apt.ID + " 2025-05-22 11:00", wantText: "Histórico: originalmente 21/05/2025 às 15:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.dispatcher.HandleUpdate(ctx, textUpdate(adminChat, tt.text))
			assert.Contains(t, f.sender.last().Text, tt.wantText)
		})
	}

	updated, _ := f.repo.GetAppointment(apt.ID)
	assert.Equal(t, storagemodels.StatusRescheduled, updated.Status)
	assert.Equal(t, "2025-05-22", updated.Date)
}

func TestParseCommandStripsBotName(t *testing.T) {
	f := newBotFixture(t, assistanttest.Replies("oi"))
	f.dispatcher.HandleUpdate(context.Background(), textUpdate(clientChat, "/servicos@LaCasaBarberBot"))
	assert.Contains(t, f.sender.last().Text, "Nossos serviços")
}
