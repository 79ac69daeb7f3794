package bot

import (
	"fmt"
	"strings"

	"repbot/models"
	"repbot/service"
)

const infoText = `📘 Доступные команды:

👤 /me — ваш Telegram ID
📊 /status — ваш статус
🧬 /vozroditsya — регистрация
🏆 /top — топ пользователей
ℹ️ /info — список всех команд

🔧 Админ-команды:
➕ /rep <id> — добавить репутацию
➖ /unrep <id> — отнять репутацию
🗑 /delete <id> — удалить пользователя
🛠 /rangedit <id> <очки> — задать очки вручную
📋 /log — история действий`

// formatStatus renders the /status reply
func formatStatus(status *service.Status) string {
	return fmt.Sprintf(`📊 Ваш статус:
👤 Пользователь: @%s
🎯 Очки: %d
🎖 Ранг: %s %s
🏆 Достижения: %s`,
		status.User.Username,
		status.User.Points,
		status.Rank.Emoji,
		status.Rank.Name,
		formatBadges(status.Achievements),
	)
}

// formatLeaderboard renders the /top reply
func formatLeaderboard(entries []*service.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "Пока никто не зарегистрирован."
	}

	var sb strings.Builder
	sb.WriteString("🏆 Топ пользователей:\n")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("\n%d. @%s — %d очков %s %s",
			entry.Position,
			entry.User.Username,
			entry.User.Points,
			entry.Rank.Emoji,
			entry.Rank.Name,
		))
		if badges := formatBadges(entry.Achievements); badges != "—" {
			sb.WriteString(" " + badges)
		}
	}
	return sb.String()
}

// formatRankChange renders the one-off rank transition notice
func formatRankChange(result *service.MutationResult) string {
	if result.NewRank.Min > result.OldRank.Min {
		return fmt.Sprintf("🎉 Пользователь получил новый ранг: %s %s", result.NewRank.Emoji, result.NewRank.Name)
	}
	return fmt.Sprintf("⚠️ Пользователь понижен до ранга: %s %s", result.NewRank.Emoji, result.NewRank.Name)
}

// formatLog renders the /log reply. resolve maps identities to display
// labels and must fall back to the raw id on lookup failure.
func formatLog(entries []*models.AuditEntry, resolve func(int64) string) string {
	if len(entries) == 0 {
		return "История действий пуста."
	}

	var sb strings.Builder
	sb.WriteString("📋 Последние действия:\n")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("\n%s — %s → %s (%s)",
			entry.CreatedAt.Format("02.01.2006 15:04"),
			resolve(entry.ActorID),
			resolve(entry.TargetID),
			actionLabel(entry.Action),
		))
	}
	return sb.String()
}

func actionLabel(action models.AuditAction) string {
	switch action {
	case models.AuditActionRegister:
		return "регистрация"
	case models.AuditActionIncrement:
		return "+реп"
	case models.AuditActionDecrement:
		return "-реп"
	case models.AuditActionSet:
		return "правка очков"
	case models.AuditActionDelete:
		return "удаление"
	default:
		return string(action)
	}
}

func formatBadges(badges []string) string {
	if len(badges) == 0 {
		return "—"
	}
	return strings.Join(badges, " ")
}
