package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"telegram-economy-bot/internal/model"
)

// TestDebitCoinsNeverNegativeProperty checks that a debit leaves
// max(0, previous - amount) and reports what it actually removed.
func TestDebitCoinsNeverNegativeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		coins := rapid.Int64Range(0, 1_000_000).Draw(t, "coins")
		amount := rapid.Int64Range(0, 2_000_000).Draw(t, "amount")

		u := &model.User{TopCoin: coins}
		removed := DebitCoins(u, amount)

		expected := coins - amount
		if expected < 0 {
			expected = 0
		}
		if u.TopCoin != expected {
			t.Fatalf("balance: expected %d, got %d", expected, u.TopCoin)
		}
		if removed != coins-u.TopCoin {
			t.Fatalf("removed %d but balance moved by %d", removed, coins-u.TopCoin)
		}
	})
}

// TestDebitXPClampsEachCounterProperty checks every XP aggregate stays
// non-negative and total XP drops by exactly the reported amount.
func TestDebitXPClampsEachCounterProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.Int64Range(0, 10_000).Draw(t, "total")
		u := &model.User{
			TotalXP: total,
			DayXP:   rapid.Int64Range(0, total).Draw(t, "day"),
			WeekXP:  rapid.Int64Range(0, total).Draw(t, "week"),
			MonthXP: rapid.Int64Range(0, total).Draw(t, "month"),
		}
		before := *u
		amount := rapid.Int64Range(0, 20_000).Draw(t, "amount")

		removed := DebitXP(u, amount)

		if u.TotalXP < 0 || u.DayXP < 0 || u.WeekXP < 0 || u.MonthXP < 0 {
			t.Fatalf("negative counter: %+v", u)
		}
		if before.TotalXP-u.TotalXP != removed {
			t.Fatalf("total moved by %d, reported %d", before.TotalXP-u.TotalXP, removed)
		}
		if removed > amount {
			t.Fatalf("removed %d > requested %d", removed, amount)
		}
		if u.DayXP != max(0, before.DayXP-removed) {
			t.Fatalf("day xp: expected %d, got %d", max(0, before.DayXP-removed), u.DayXP)
		}
	})
}

// TestTransferConservesCoinsProperty checks coins moved between two users
// are conserved and the sender never goes negative.
func TestTransferConservesCoinsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := &model.User{TopCoin: rapid.Int64Range(0, 100_000).Draw(t, "from")}
		to := &model.User{TopCoin: rapid.Int64Range(0, 100_000).Draw(t, "to")}
		amount := rapid.Int64Range(0, 200_000).Draw(t, "amount")
		sum := from.TopCoin + to.TopCoin

		moved := Transfer(from, to, amount)

		if from.TopCoin+to.TopCoin != sum {
			t.Fatalf("coins not conserved: %d != %d", from.TopCoin+to.TopCoin, sum)
		}
		if from.TopCoin < 0 || moved > amount {
			t.Fatalf("bad transfer: moved=%d from=%d", moved, from.TopCoin)
		}
	})
}

func TestCreditIgnoresNonPositiveAmounts(t *testing.T) {
	u := &model.User{TopCoin: 10, TotalXP: 5, DayXP: 5, WeekXP: 5, MonthXP: 5}

	assert.Zero(t, CreditCoins(u, -3))
	assert.Zero(t, CreditXP(u, 0))
	assert.Equal(t, int64(10), u.TopCoin)

	assert.Equal(t, int64(7), CreditXP(u, 7))
	assert.Equal(t, int64(12), u.TotalXP)
	assert.Equal(t, int64(12), u.DayXP)
	assert.Equal(t, int64(12), u.WeekXP)
	assert.Equal(t, int64(12), u.MonthXP)
}

func TestCanAfford(t *testing.T) {
	u := &model.User{TopCoin: 50}
	assert.True(t, CanAfford(u, 50))
	assert.False(t, CanAfford(u, 51))
}

func TestEntry(t *testing.T) {
	e := Entry(7, -5, 0, model.TxTypeQuiz, "")
	assert.NotEmpty(t, e.ID)
	assert.Nil(t, e.Description)
	assert.Equal(t, int64(-5), e.Coins)

	e = Entry(7, 0, 3, model.TxTypeHunt, "won")
	if assert.NotNil(t, e.Description) {
		assert.Equal(t, "won", *e.Description)
	}
}
