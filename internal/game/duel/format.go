package duel

import (
	"fmt"
	"strings"

	"telegram-economy-bot/internal/game/outcome"
)

// FormatProposed is the announcement of a new duel.
func FormatProposed(d Duel) string {
	return strings.Join([]string{
		fmt.Sprintf("⚔️ %s thách đấu %s với %d coin!", d.ChallengerName, d.TargetName, d.Wager),
		"",
		"Mỗi bên hãy chọn một lệnh:",
		"/attack – Tấn công (thắng /dodge)",
		"/shield – Phòng thủ (thắng /attack)",
		"/dodge – Né tránh (thắng /shield)",
	}, "\n")
}

// FormatMoved acknowledges a move that did not finish the duel.
func FormatMoved(move outcome.Move) string {
	return fmt.Sprintf("✅ Bạn đã chọn: %s\nĐang chờ đối thủ...", move.Label())
}

// FormatResult describes a settled duel.
func FormatResult(res *Result) string {
	d := res.Duel
	var sb strings.Builder
	sb.WriteString("⚔️ KẾT QUẢ TRẬN ĐẤU\n")
	sb.WriteString(fmt.Sprintf("%s: %s\n", d.ChallengerName, d.ChallengerMove.Label()))
	sb.WriteString(fmt.Sprintf("%s: %s\n\n", d.TargetName, d.TargetMove.Label()))

	if res.Winner == nil {
		sb.WriteString("⚖️ Hòa, không ai mất coin.")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("🏆 Người thắng: %s (+%d coin)\n", res.Winner.DisplayName(), res.Amount))
	sb.WriteString(fmt.Sprintf("💀 Người thua: %s (-%d coin)", res.Loser.DisplayName(), res.Amount))
	return sb.String()
}

// FormatExpired is sent to the chat when nobody finished the duel in time.
func FormatExpired(d Duel) string {
	return fmt.Sprintf("⌛ Trận đấu giữa %s và %s đã hết hạn, không ai mất coin.", d.ChallengerName, d.TargetName)
}
