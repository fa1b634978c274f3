package wager

import (
	"fmt"
	"strings"
)

var diceFaces = [7]string{"", "⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

// FormatRoll describes a settled /roll.
func FormatRoll(o *Outcome) string {
	head := fmt.Sprintf("🎲 Bạn tung được %d, bot tung được %d.", o.UserRoll, o.HouseRoll)
	switch {
	case o.Draw:
		return head + "\n🤝 Hòa! Không ai mất coin."
	case o.Won:
		return fmt.Sprintf("%s\n🎉 Bạn thắng %d coin!\n💰 Coin hiện tại: %d", head, o.CoinDelta, o.User.TopCoin)
	default:
		return fmt.Sprintf("%s\n😢 Bạn thua %d coin.\n💰 Coin hiện tại: %d", head, -o.CoinDelta, o.User.TopCoin)
	}
}

// FormatRace describes a settled /race.
func FormatRace(o *Outcome) string {
	head := fmt.Sprintf("🏁 Bạn đặt cược %d coin vào %s...", o.Wager, o.Label)
	if o.Won {
		return fmt.Sprintf("%s\n🥇 Về nhất! +%d coin\n💰 Coin hiện tại: %d", head, o.CoinDelta, o.User.TopCoin)
	}
	return fmt.Sprintf("%s\n💨 Bị bỏ lại phía sau. -%d coin\n💰 Coin hiện tại: %d", head, -o.CoinDelta, o.User.TopCoin)
}

// FormatHunt describes a settled /hunt.
func FormatHunt(o *Outcome) string {
	head := fmt.Sprintf("🏹 Bạn lên đường săn %s...", o.Label)
	if o.Won {
		return fmt.Sprintf("%s\n⚔️ Hạ gục thành công! +%d XP\n⭐ XP hiện tại: %d", head, o.XPDelta, o.User.TotalXP)
	}
	return fmt.Sprintf("%s\n💀 Bạn bị đánh bại. -%d XP\n⭐ XP hiện tại: %d", head, -o.XPDelta, o.User.TotalXP)
}

// FormatSteal describes a settled /steal.
func FormatSteal(o *StealOutcome) string {
	if o.Success {
		return fmt.Sprintf("🕵️ Trộm thành công %d coin từ %s!\n💰 Coin hiện tại: %d",
			o.Amount, o.Target.DisplayName(), o.Thief.TopCoin)
	}
	return fmt.Sprintf("🚨 Bạn bị %s bắt quả tang! Phạt %d coin.\n💰 Coin hiện tại: %d",
		o.Target.DisplayName(), o.Amount, o.Thief.TopCoin)
}

// FormatStealCooldown is the reply while the steal window is closed.
func FormatStealCooldown(minutes int64) string {
	return fmt.Sprintf("⏳ Bạn phải đợi khoảng %d phút nữa mới được /steal tiếp.", minutes)
}

// FormatTaiXiuPrompt asks the player to pick a side.
func FormatTaiXiuPrompt(name string, wager int64) string {
	return fmt.Sprintf("🎲 %s đặt cược %d coin vào Tài Xỉu.\nChọn cửa bên dưới:", name, wager)
}

// FormatTaiXiu describes a settled tai-xiu bet.
func FormatTaiXiu(o *Outcome) string {
	faces := make([]string, len(o.Dice.Dice))
	for i, d := range o.Dice.Dice {
		faces[i] = diceFaces[d]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎲 Kết quả: %s (%d, %d, %d) = %d\n",
		strings.Join(faces, " "), o.Dice.Dice[0], o.Dice.Dice[1], o.Dice.Dice[2], o.Dice.Sum)
	fmt.Fprintf(&b, "📌 %s • %s\n", o.Dice.SizeCategory().Label(), o.Dice.ParityCategory().Label())
	fmt.Fprintf(&b, "Bạn chọn: %s\n", o.Choice.Label())
	if o.Won {
		fmt.Fprintf(&b, "🎉 Thắng! +%d coin\n", o.CoinDelta)
	} else {
		fmt.Fprintf(&b, "😢 Thua! -%d coin\n", -o.CoinDelta)
	}
	fmt.Fprintf(&b, "💰 Coin hiện tại: %d", o.User.TopCoin)
	return b.String()
}
