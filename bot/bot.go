package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"repbot/config"
	"repbot/metrics"
	"repbot/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const (
	replyNoAccess       = "⛔️ Нет доступа"
	replyGenericFailure = "⚠️ Что-то пошло не так, попробуйте позже."
)

// Bot maps inbound Telegram commands to reputation engine calls and renders
// the replies. Authorization is decided here; the engine trusts its caller.
type Bot struct {
	api        *tgbotapi.BotAPI
	reputation service.ReputationService
	config     *config.Config
	recorder   metrics.Recorder
}

// New creates a new bot instance
func New(cfg *config.Config, reputation service.ReputationService, recorder metrics.Recorder) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	log.Infof("Bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:        api,
		reputation: reputation,
		config:     cfg,
		recorder:   recorder,
	}, nil
}

// Start begins polling updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.WithError(err).Error("Failed to handle message")
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		return b.handleCommand(ctx, msg)
	}

	// A bare "+" or "-" reply to someone's message is shorthand for
	// /rep and /unrep on the author of that message. Both entry points
	// converge on the same ApplyDelta call.
	if delta, ok := parsePlainDelta(msg.Text); ok && msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return b.handlePlainDelta(ctx, msg, delta)
	}

	return nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	command := msg.Command()
	b.recorder.RecordCommand(command)

	switch command {
	case "vozroditsya":
		return b.handleRegister(ctx, msg)
	case "status":
		return b.handleStatus(ctx, msg)
	case "top":
		return b.handleTop(ctx, msg)
	case "me":
		return b.reply(msg.Chat.ID, "Ваш Telegram ID: "+strconv.FormatInt(msg.From.ID, 10))
	case "info":
		return b.reply(msg.Chat.ID, infoText)
	case "rep":
		return b.handleDelta(ctx, msg, 1)
	case "unrep":
		return b.handleDelta(ctx, msg, -1)
	case "rangedit":
		return b.handleSetPoints(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "log":
		return b.handleLog(ctx, msg)
	default:
		return nil
	}
}

func (b *Bot) handleRegister(ctx context.Context, msg *tgbotapi.Message) error {
	username := msg.From.UserName
	if username == "" {
		username = msg.From.FirstName
	}

	outcome, err := b.reputation.Register(ctx, msg.From.ID, username)
	if err != nil {
		log.WithError(err).Error("Register failed")
		return b.reply(msg.Chat.ID, replyGenericFailure)
	}

	if outcome.AlreadyRegistered {
		return b.reply(msg.Chat.ID, "Вы уже зарегистрированы!")
	}
	return b.reply(msg.Chat.ID, "✅ Вы успешно зарегистрированы!")
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) error {
	status, err := b.reputation.GetStatus(ctx, msg.From.ID)
	if errors.Is(err, service.ErrNotRegistered) {
		return b.reply(msg.Chat.ID, "Вы не зарегистрированы. Используйте /vozroditsya")
	}
	if err != nil {
		log.WithError(err).Error("GetStatus failed")
		return b.reply(msg.Chat.ID, replyGenericFailure)
	}

	return b.reply(msg.Chat.ID, formatStatus(status))
}

func (b *Bot) handleTop(ctx context.Context, msg *tgbotapi.Message) error {
	entries, err := b.reputation.Leaderboard(ctx, b.config.LeaderboardSize)
	if err != nil {
		log.WithError(err).Error("Leaderboard failed")
		return b.reply(msg.Chat.ID, replyGenericFailure)
	}

	return b.reply(msg.Chat.ID, formatLeaderboard(entries))
}

func (b *Bot) handleDelta(ctx context.Context, msg *tgbotapi.Message, delta int64) error {
	if !b.isAdmin(msg) {
		return b.reply(msg.Chat.ID, replyNoAccess)
	}

	targetID, ok := parseTargetID(msg.CommandArguments())
	if !ok {
		return b.reply(msg.Chat.ID, "Формат: /"+msg.Command()+" <id>")
	}

	return b.applyDelta(ctx, msg.Chat.ID, msg.From.ID, targetID, delta)
}

func (b *Bot) handlePlainDelta(ctx context.Context, msg *tgbotapi.Message, delta int64) error {
	if !b.isAdmin(msg) {
		// Plain replies are silently ignored for non-admins to avoid
		// turning every "+" in chat into a bot reply
		return nil
	}

	return b.applyDelta(ctx, msg.Chat.ID, msg.From.ID, msg.ReplyToMessage.From.ID, delta)
}

// applyDelta is the single mutation path shared by /rep, /unrep and the
// plain-text shorthand
func (b *Bot) applyDelta(ctx context.Context, chatID, actorID, targetID, delta int64) error {
	result, err := b.reputation.ApplyDelta(ctx, actorID, targetID, delta)
	if errors.Is(err, service.ErrTargetNotFound) {
		return b.reply(chatID, "Пользователь не найден.")
	}
	if err != nil {
		log.WithError(err).Error("ApplyDelta failed")
		return b.reply(chatID, replyGenericFailure)
	}

	if result.RankChanged {
		if err := b.reply(chatID, formatRankChange(result)); err != nil {
			return err
		}
	}

	if delta >= 0 {
		return b.reply(chatID, "Репутация добавлена. Очки: "+strconv.FormatInt(result.NewPoints, 10))
	}
	return b.reply(chatID, "Репутация уменьшена. Очки: "+strconv.FormatInt(result.NewPoints, 10))
}

func (b *Bot) handleSetPoints(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isAdmin(msg) {
		return b.reply(msg.Chat.ID, replyNoAccess)
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.reply(msg.Chat.ID, "Формат: /rangedit <id> <очки>")
	}

	targetID, ok := parseTargetID(args[0])
	if !ok {
		return b.reply(msg.Chat.ID, "Формат: /rangedit <id> <очки>")
	}

	value, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return b.reply(msg.Chat.ID, "Очки должны быть целым числом.")
	}

	result, err := b.reputation.SetPoints(ctx, msg.From.ID, targetID, value)
	if errors.Is(err, service.ErrTargetNotFound) {
		return b.reply(msg.Chat.ID, "Пользователь не найден.")
	}
	if errors.Is(err, service.ErrInvalidValue) {
		return b.reply(msg.Chat.ID, "Очки не могут быть отрицательными.")
	}
	if err != nil {
		log.WithError(err).Error("SetPoints failed")
		return b.reply(msg.Chat.ID, replyGenericFailure)
	}

	if result.RankChanged {
		if err := b.reply(msg.Chat.ID, formatRankChange(result)); err != nil {
			return err
		}
	}

	return b.reply(msg.Chat.ID, "✅ Очки пользователя обновлены до "+strconv.FormatInt(result.NewPoints, 10))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isAdmin(msg) {
		return b.reply(msg.Chat.ID, replyNoAccess)
	}

	targetID, ok := parseTargetID(msg.CommandArguments())
	if !ok {
		return b.reply(msg.Chat.ID, "Формат: /delete <id>")
	}

	err := b.reputation.DeleteUser(ctx, msg.From.ID, targetID)
	if errors.Is(err, service.ErrTargetNotFound) {
		return b.reply(msg.Chat.ID, "Пользователь не найден.")
	}
	if err != nil {
		log.WithError(err).Error("DeleteUser failed")
		return b.reply(msg.Chat.ID, replyGenericFailure)
	}

	return b.reply(msg.Chat.ID, "Пользователь удалён.")
}

func (b *Bot) handleLog(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isAdmin(msg) {
		return b.reply(msg.Chat.ID, replyNoAccess)
	}

	entries, err := b.reputation.RecentLog(ctx, b.config.LogSize)
	if err != nil {
		log.WithError(err).Error("RecentLog failed")
		return b.reply(msg.Chat.ID, replyGenericFailure)
	}

	return b.reply(msg.Chat.ID, formatLog(entries, b.resolveName))
}

// isAdmin reports whether the sender is an administrator or the creator of
// the chat. Lookup failures deny access.
func (b *Bot) isAdmin(msg *tgbotapi.Message) bool {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: msg.Chat.ID,
			UserID: msg.From.ID,
		},
	})
	if err != nil {
		log.WithError(err).WithField("userID", msg.From.ID).Warn("Chat member lookup failed")
		return false
	}

	return member.Status == "administrator" || member.Status == "creator"
}

// resolveName looks up a display name for a Telegram ID, falling back to the
// raw id when the lookup fails. The fallback keeps log rendering total.
func (b *Bot) resolveName(id int64) string {
	chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: id},
	})
	if err != nil || chat.UserName == "" {
		return strconv.FormatInt(id, 10)
	}
	return "@" + chat.UserName
}

func (b *Bot) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}

// parseTargetID parses a single numeric Telegram ID argument
func parseTargetID(arg string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parsePlainDelta recognizes the "+"/"-" reply shorthand
func parsePlainDelta(text string) (int64, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "+", "➕", "plus", "плюс":
		return 1, true
	case "-", "➖", "minus", "минус":
		return -1, true
	default:
		return 0, false
	}
}
