package ranking

// AchievementRule unlocks a badge once points reach the threshold.
// Badges are cumulative: reaching a higher threshold keeps the lower ones.
type AchievementRule struct {
	Threshold int64
	Badge     string
}

var achievementRules = []AchievementRule{
	{Threshold: 10, Badge: "🥉"},
	{Threshold: 30, Badge: "🥈"},
	{Threshold: 50, Badge: "🥇"},
	{Threshold: 80, Badge: "🏆"},
}

// Achievements returns the badges earned at the given point total, ascending
// by threshold. The result is empty below the first threshold.
func Achievements(points int64) []string {
	var badges []string
	for _, rule := range achievementRules {
		if points >= rule.Threshold {
			badges = append(badges, rule.Badge)
		}
	}
	return badges
}

// AchievementRules returns the ordered rule list.
func AchievementRules() []AchievementRule {
	out := make([]AchievementRule, len(achievementRules))
	copy(out, achievementRules)
	return out
}
