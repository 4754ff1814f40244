package telegram_bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"socialguard/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxListedAuthors caps how many flagged authors one notification names.
const maxListedAuthors = 10

// Config for the moderator bot
type Config struct {
	Enabled  bool
	BotToken string
	ChatID   int64
}

// StatsSource provides history totals for the /stats command.
type StatsSource interface {
	AnalysisStats(ctx context.Context) (*models.AnalysisStats, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot sends flagged-author notifications to a moderator chat
type Bot struct {
	api    *tgbotapi.BotAPI
	sender sender
	chatID int64
	stats  StatsSource
	logger *zap.Logger
}

// NewBot creates a new Telegram bot instance. It returns nil, nil when the
// bot is disabled.
func NewBot(cfg Config, stats StatsSource, logger *zap.Logger) (*Bot, error) {
	if !cfg.Enabled || cfg.BotToken == "" {
		logger.Info("Telegram bot is disabled (telegram.enabled=false or token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return &Bot{
		api:    botAPI,
		sender: botAPI,
		chatID: cfg.ChatID,
		stats:  stats,
		logger: logger,
	}, nil
}

// Start answers moderator commands until ctx is done
func (b *Bot) Start(ctx context.Context) error {
	if b == nil || b.api == nil {
		return nil
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot shutting down...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}
	switch message.Command() {
	case "start":
		b.sendMessage(message.Chat.ID, fmt.Sprintf(
			"👋 Merhaba %s!\n\n"+
				"Bir analizde eşik değerini aşan kullanıcılar bulunduğunda bu sohbete bildirim gönderirim.\n\n"+
				"/stats komutu ile analiz özetini görebilirsiniz.",
			message.From.FirstName))
	case "stats":
		b.handleStatsCommand(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Bilinmeyen komut. /start veya /stats kullanın.")
	}
}

func (b *Bot) handleStatsCommand(ctx context.Context, message *tgbotapi.Message) {
	if b.stats == nil {
		b.sendMessage(message.Chat.ID, "İstatistikler kullanılamıyor.")
		return
	}
	stats, err := b.stats.AnalysisStats(ctx)
	if err != nil {
		b.logger.Error("Failed to load stats for bot", zap.Error(err))
		b.sendMessage(message.Chat.ID, "❌ İstatistikler alınamadı.")
		return
	}
	b.sendMessage(message.Chat.ID, FormatStats(stats))
}

// NotifyFlagged sends a summary of an analysis that flagged at least one author.
func (b *Bot) NotifyFlagged(ctx context.Context, a *models.Analysis) error {
	if b == nil {
		return fmt.Errorf("bot is disabled")
	}
	if a.FlaggedUsers == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(b.chatID, FormatFlagged(a))
	if strings.HasPrefix(a.URL, "http://") || strings.HasPrefix(a.URL, "https://") {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🔗 Gönderiyi aç", a.URL)),
		)
	}

	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send flagged notification",
			zap.Int64("chat_id", b.chatID),
			zap.String("analysis_id", a.ID),
			zap.Error(err))
		return fmt.Errorf("failed to send notification: %w", err)
	}

	b.logger.Info("Flagged notification sent",
		zap.Int64("chat_id", b.chatID),
		zap.String("analysis_id", a.ID),
		zap.Int("flagged_users", a.FlaggedUsers))
	return nil
}

// FormatFlagged renders the notification text for an analysis.
func FormatFlagged(a *models.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🚨 %d kullanıcı işaretlendi\n\n", a.FlaggedUsers)
	fmt.Fprintf(&sb, "📍 Platform: %s\n", a.Platform)
	fmt.Fprintf(&sb, "👤 Gönderi sahibi: %s\n", a.PostOwner)
	fmt.Fprintf(&sb, "💬 Yorum: %d, analiz edilen kullanıcı: %d\n", a.TotalComments, a.AnalyzedUsers)
	fmt.Fprintf(&sb, "🎚 Eşik: %.2f\n\n", a.Threshold)

	listed := 0
	for _, ua := range a.UserAnalyses {
		if !ua.Flagged {
			continue
		}
		if listed == maxListedAuthors {
			fmt.Fprintf(&sb, "... ve %d kullanıcı daha\n", a.FlaggedUsers-listed)
			break
		}
		fmt.Fprintf(&sb, "• %s: %d/%d zararlı (%.0f%%, %s)\n",
			ua.UserID, ua.HarmfulComments, ua.TotalComments, ua.HarmfulRatio*100, ua.RiskCategory)
		listed++
	}
	return sb.String()
}

// FormatStats renders history totals.
func FormatStats(s *models.AnalysisStats) string {
	var sb strings.Builder
	sb.WriteString("📊 Analiz özeti\n\n")
	fmt.Fprintf(&sb, "Toplam analiz: %d\n", s.TotalAnalyses)
	fmt.Fprintf(&sb, "Analiz edilen yorum: %d\n", s.TotalCommentsAnalyzed)
	fmt.Fprintf(&sb, "Analiz edilen kullanıcı: %d\n", s.TotalUsersAnalyzed)
	fmt.Fprintf(&sb, "İşaretlenen kullanıcı: %d\n", s.TotalFlaggedUsers)

	platforms := make([]string, 0, len(s.PlatformDistribution))
	for p := range s.PlatformDistribution {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	for _, p := range platforms {
		fmt.Fprintf(&sb, "  %s: %d\n", p, s.PlatformDistribution[p])
	}
	return sb.String()
}

// sendMessage is a helper to send a simple text message
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
