package outcome

// Category is a tai-xiu betting choice.
type Category string

// Tai-xiu choices. Tai and Xiu split the sum at 11; Chan and Le split parity.
const (
	Tai  Category = "tai"  // high: sum 11..18
	Xiu  Category = "xiu"  // low: sum 3..10
	Chan Category = "chan" // even sum
	Le   Category = "le"   // odd sum
)

// Categories lists the choices in the order they are presented.
func Categories() []Category {
	return []Category{Tai, Xiu, Chan, Le}
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case Tai, Xiu, Chan, Le:
		return c, true
	}
	return "", false
}

// Label returns the display label of the category.
func (c Category) Label() string {
	switch c {
	case Tai:
		return "Tài (11–17)"
	case Xiu:
		return "Xỉu (4–10)"
	case Chan:
		return "Chẵn"
	case Le:
		return "Lẻ"
	}
	return string(c)
}

// DiceRoll is the result of three six-sided dice.
type DiceRoll struct {
	Dice [3]int
	Sum  int
}

// NewDiceRoll builds a roll from known dice.
func NewDiceRoll(a, b, c int) DiceRoll {
	return DiceRoll{Dice: [3]int{a, b, c}, Sum: a + b + c}
}

// RollTaiXiu rolls three dice.
func RollTaiXiu(src Source) DiceRoll {
	return NewDiceRoll(RollDie(src, 6), RollDie(src, 6), RollDie(src, 6))
}

// High reports whether the sum falls in the tai range.
func (r DiceRoll) High() bool {
	return r.Sum >= 11
}

// Even reports whether the sum is even.
func (r DiceRoll) Even() bool {
	return r.Sum%2 == 0
}

// Matches reports whether the roll satisfies the category.
func (r DiceRoll) Matches(c Category) bool {
	switch c {
	case Tai:
		return r.High()
	case Xiu:
		return !r.High()
	case Chan:
		return r.Even()
	case Le:
		return !r.Even()
	}
	return false
}

// SizeCategory returns Tai or Xiu for the roll.
func (r DiceRoll) SizeCategory() Category {
	if r.High() {
		return Tai
	}
	return Xiu
}

// ParityCategory returns Chan or Le for the roll.
func (r DiceRoll) ParityCategory() Category {
	if r.Even() {
		return Chan
	}
	return Le
}
