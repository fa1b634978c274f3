package quiz

import (
	"fmt"
	"strings"
	"time"
)

// FormatIssued is the question shown to the player.
func FormatIssued(q Quiz, timeout time.Duration) string {
	return strings.Join([]string{
		fmt.Sprintf("🧠 Câu hỏi cho bạn (Level %d):", q.Level),
		"",
		q.Expression + " = ?",
		"",
		fmt.Sprintf("⏱ Bạn có %d giây để trả lời.", int(timeout.Seconds())),
		"Trả lời bằng cách gửi mỗi số thôi (không kèm chữ).",
	}, "\n")
}

// FormatResult describes a settled quiz.
func FormatResult(res *Result) string {
	if res.Verdict == Correct {
		if res.Capped {
			return fmt.Sprintf("🚫 Bạn đã đạt giới hạn %d XP từ /quiz trong hôm nay.", res.DailyCap)
		}
		return fmt.Sprintf("🎉 Chính xác! +%d XP\n📌 XP quiz hôm nay: %d/%d", res.GainedXP, res.EarnedToday, res.DailyCap)
	}

	var reason string
	switch res.Verdict {
	case Wrong:
		reason = fmt.Sprintf("❌ Sai rồi! Đáp án đúng: %d", res.Quiz.Answer)
	case Late:
		reason = "⏱ Bạn trả lời quá trễ."
	default:
		reason = "⏱ Hết thời gian trả lời /quiz."
	}
	return fmt.Sprintf("%s\n🔻 Phạt: -%d XP, -%d coin\n📊 XP hiện tại: %d • Coin: %d",
		reason, res.LostXP, res.LostCoins, res.User.TotalXP, res.User.TopCoin)
}

// FormatCapReached is the reply when the daily cap blocks a new quiz.
func FormatCapReached(dailyCap int64) string {
	return fmt.Sprintf("🚫 Bạn đã đạt giới hạn %d XP từ /quiz trong hôm nay.", dailyCap)
}
