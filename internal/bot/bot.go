// Package bot implements the Telegram command surface: digest commands and
// the settings wizard. It is a caller of the core, never the other way
// around.
package bot

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/meeting-reminder-bot/bot/internal/calendar"
	"github.com/meeting-reminder-bot/bot/internal/storage"
	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

type wizardStep int

const (
	stepFilter wizardStep = iota
	step1h
	step15m
	step5m
	stepNew
)

// wizardState tracks one user's progress through the settings conversation.
type wizardState struct {
	step      wizardStep
	fromStart bool
	notify1h  bool
	notify15m bool
	notify5m  bool
}

// telegramAPI is the slice of the Telegram client the bot uses. Satisfied
// by *tgbotapi.BotAPI.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot handles incoming Telegram updates. Command handling runs on its own
// loop and is never blocked by refresh or matcher cycles.
type Bot struct {
	api       telegramAPI
	settings  *storage.SettingsRepository
	meetings  *storage.MeetingRepository
	formatter *Formatter
	locTH     *time.Location

	mu      sync.Mutex
	wizards map[int64]*wizardState
}

// New creates the bot on an authorized API client.
func New(api *tgbotapi.BotAPI, settings *storage.SettingsRepository, meetings *storage.MeetingRepository, formatter *Formatter, locTH *time.Location) *Bot {
	return &Bot{
		api:       api,
		settings:  settings,
		meetings:  meetings,
		formatter: formatter,
		locTH:     locTH,
		wizards:   make(map[int64]*wizardState),
	}
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	userID := m.From.ID
	b.rememberUser(ctx, m.From)

	if !m.IsCommand() {
		b.send(m.Chat.ID, msgUnknown)
		return
	}

	switch m.Command() {
	case "start":
		log.Printf("User start: id=%d username=%q", userID, m.From.UserName)
		b.send(m.Chat.ID, msgGreeting)
		b.beginWizard(userID, stepFilter, true)
		b.sendFilterKeyboard(m.Chat.ID)
	case "settings_filter":
		b.beginWizard(userID, stepFilter, false)
		b.sendFilterKeyboard(m.Chat.ID)
	case "settings_notifications":
		b.beginWizard(userID, step1h, false)
		b.sendWithKeyboard(m.Chat.ID, msgNotificationsIntro+"\n"+msgNotifications1h, yesNoKeyboard())
	case "get_today":
		b.sendDigest(ctx, m, PeriodToday, calendar.TodayRange)
	case "get_tomorrow":
		b.sendDigest(ctx, m, PeriodTomorrow, calendar.TomorrowRange)
	case "get_rest_week":
		b.sendDigest(ctx, m, PeriodWeek, calendar.RestOfWeekRange)
	case "get_next_week":
		b.sendDigest(ctx, m, PeriodWeek, calendar.NextWeekRange)
	default:
		b.send(m.Chat.ID, msgUnknown)
	}
}

// sendDigest replies with the user's meetings in the given range, applying
// the attendance filter. Digests read the snapshot, not the network.
func (b *Bot) sendDigest(ctx context.Context, m *tgbotapi.Message, period Period, rangeFn func(time.Time, *time.Location) (time.Time, time.Time)) {
	settings, err := b.settings.Get(ctx, m.From.ID)
	if err != nil {
		log.Printf("Digest: loading settings for user %d failed: %v", m.From.ID, err)
		b.send(m.Chat.ID, msgError)
		return
	}

	from, to := rangeFn(time.Now(), b.locTH)
	meetings, err := b.meetings.ListBetween(ctx, from, to)
	if err != nil {
		log.Printf("Digest: listing meetings failed: %v", err)
		b.send(m.Chat.ID, msgError)
		return
	}

	meetings = filterByAttendance(meetings, *settings)
	b.send(m.Chat.ID, b.formatter.MeetingsList(meetings, period))
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Acknowledge the button press so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.Printf("Callback ack failed: %v", err)
	}
	if q.Message == nil {
		return
	}

	userID := q.From.ID
	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID

	b.mu.Lock()
	state, ok := b.wizards[userID]
	b.mu.Unlock()
	if !ok {
		return
	}

	switch state.step {
	case stepFilter:
		filterType := models.FilterAll
		if q.Data == "mine" {
			filterType = models.FilterMine
		}
		if err := b.settings.SetFilter(ctx, userID, filterType); err != nil {
			log.Printf("Saving filter for user %d failed: %v", userID, err)
		}
		if state.fromStart {
			state.step = step1h
			b.edit(chatID, messageID, msgFilterSaved)
			b.sendWithKeyboard(chatID, msgNotificationsIntro+"\n"+msgNotifications1h, yesNoKeyboard())
		} else {
			b.edit(chatID, messageID, msgFilterSaved)
			b.endWizard(userID)
		}
	case step1h:
		state.notify1h = q.Data == "yes"
		state.step = step15m
		b.editWithKeyboard(chatID, messageID, msgNotifications15m, yesNoKeyboard())
	case step15m:
		state.notify15m = q.Data == "yes"
		state.step = step5m
		b.editWithKeyboard(chatID, messageID, msgNotifications5m, yesNoKeyboard())
	case step5m:
		state.notify5m = q.Data == "yes"
		state.step = stepNew
		b.editWithKeyboard(chatID, messageID, msgNotificationsNew, yesNoKeyboard())
	case stepNew:
		notifyNew := q.Data == "yes"
		err := b.settings.SetNotifications(ctx, userID, state.notify1h, state.notify15m, state.notify5m, notifyNew)
		if err != nil {
			log.Printf("Saving notifications for user %d failed: %v", userID, err)
		}
		b.edit(chatID, messageID, msgNotificationsSaved)
		if state.fromStart {
			b.send(chatID, msgMenu)
			b.send(chatID, msgSettingsDone)
		}
		b.endWizard(userID)
	}
}

func (b *Bot) beginWizard(userID int64, step wizardStep, fromStart bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wizards[userID] = &wizardState{step: step, fromStart: fromStart}
}

func (b *Bot) endWizard(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.wizards, userID)
}

// rememberUser stores the username and full name, which feed the
// attendance-filter display identifier.
func (b *Bot) rememberUser(ctx context.Context, from *tgbotapi.User) {
	fullName := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if err := b.settings.SetUserInfo(ctx, from.ID, from.UserName, fullName); err != nil {
		log.Printf("Saving user info for %d failed: %v", from.ID, err)
	}
}

func (b *Bot) sendFilterKeyboard(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(msgFilterAll, "all"),
			tgbotapi.NewInlineKeyboardButtonData(msgFilterMine, "mine"),
		),
	)
	b.sendWithKeyboard(chatID, msgFilterIntro, keyboard)
}

func yesNoKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(msgYesButton, "yes"),
			tgbotapi.NewInlineKeyboardButtonData(msgNoButton, "no"),
		),
	)
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, strings.ToValidUTF8(text, " "))
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Send failed: chat=%d err=%v", chatID, err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Send failed: chat=%d err=%v", chatID, err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		log.Printf("Edit failed: chat=%d err=%v", chatID, err)
	}
}

func (b *Bot) editWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)); err != nil {
		log.Printf("Edit failed: chat=%d err=%v", chatID, err)
	}
}

// filterByAttendance keeps only meetings the user should see under their
// attendance filter.
func filterByAttendance(meetings []models.Meeting, settings models.UserSettings) []models.Meeting {
	if !settings.FiltersMine() {
		return meetings
	}
	identifier := settings.DisplayID()
	out := make([]models.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m.HasAttendant(identifier) {
			out = append(out, m)
		}
	}
	return out
}

// SetCommands registers the command menu with Telegram.
func (b *Bot) SetCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Начать настройку"},
		tgbotapi.BotCommand{Command: "settings_filter", Description: "Настройка фильтра"},
		tgbotapi.BotCommand{Command: "settings_notifications", Description: "Настройка уведомлений"},
		tgbotapi.BotCommand{Command: "get_today", Description: "Встречи сегодня"},
		tgbotapi.BotCommand{Command: "get_tomorrow", Description: "Встречи завтра"},
		tgbotapi.BotCommand{Command: "get_rest_week", Description: "Встречи до субботы"},
		tgbotapi.BotCommand{Command: "get_next_week", Description: "Встречи на следующей неделе"},
	)
	_, err := b.api.Request(cfg)
	return err
}
