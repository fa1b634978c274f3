package outcome

// Move is a duel move. The three moves dominate each other cyclically:
// attack beats dodge, dodge beats shield, shield beats attack.
type Move string

const (
	Attack Move = "attack"
	Shield Move = "shield"
	Dodge  Move = "dodge"
)

// ParseMove validates a move string.
func ParseMove(s string) (Move, bool) {
	switch m := Move(s); m {
	case Attack, Shield, Dodge:
		return m, true
	}
	return "", false
}

// Beats reports whether m defeats other.
func (m Move) Beats(other Move) bool {
	switch m {
	case Attack:
		return other == Dodge
	case Dodge:
		return other == Shield
	case Shield:
		return other == Attack
	}
	return false
}

// Label returns the display label of the move.
func (m Move) Label() string {
	switch m {
	case Attack:
		return "⚔️ Tấn công"
	case Shield:
		return "🛡 Phòng thủ"
	case Dodge:
		return "💨 Né tránh"
	}
	return string(m)
}

// Verdict is the result of a duel from the first player's point of view.
type Verdict int

const (
	Draw Verdict = iota
	FirstWins
	SecondWins
)

// Fight resolves two moves. Equal moves draw.
func Fight(first, second Move) Verdict {
	switch {
	case first == second:
		return Draw
	case first.Beats(second):
		return FirstWins
	case second.Beats(first):
		return SecondWins
	}
	return Draw
}
