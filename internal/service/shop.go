package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/outcome"
	"telegram-economy-bot/internal/ledger"
	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/pkg/idgen"
	"telegram-economy-bot/internal/pkg/lock"
	"telegram-economy-bot/internal/shop"
)

// ErrItemNotFound is returned for IDs missing from the catalog.
var ErrItemNotFound = errors.New("shop item not found")

// RewardStore records purchases awaiting fulfilment.
type RewardStore interface {
	CreateReward(ctx context.Context, reward model.Reward) error
	ListRewards(ctx context.Context, userID int64, limit int) ([]model.Reward, error)
}

// Purchase is a completed /buy.
type Purchase struct {
	Item shop.Item
	// Reward is what the purchase grants: the item type, or the box draw.
	Reward string
	User   *model.User
}

// ShopService handles shop purchases.
type ShopService struct {
	store   ledger.Store
	rewards RewardStore
	locks   *lock.UserLock
	catalog *shop.Catalog
	src     outcome.Source
}

// NewShopService creates a new ShopService instance.
func NewShopService(store ledger.Store, rewards RewardStore, locks *lock.UserLock, catalog *shop.Catalog, src outcome.Source) *ShopService {
	return &ShopService{
		store:   store,
		rewards: rewards,
		locks:   locks,
		catalog: catalog,
		src:     src,
	}
}

// Items returns all available shop items.
func (s *ShopService) Items() []shop.Item {
	return s.catalog.Items()
}

// Buy debits the item price and records the reward. Boxes draw the reward
// from the catalog's random table.
func (s *ShopService) Buy(ctx context.Context, userID int64, itemID string) (*Purchase, error) {
	item, ok := s.catalog.Get(itemID)
	if !ok {
		return nil, fmt.Errorf("%q: %w", itemID, ErrItemNotFound)
	}

	p := &Purchase{Item: item}
	err := s.locks.WithLock(ctx, userID, func() error {
		user, err := s.store.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !ledger.CanAfford(user, item.Price) {
			return fmt.Errorf("buy %s: %w", item.ID, game.ErrInsufficientFunds)
		}

		ledger.DebitCoins(user, item.Price)
		p.Reward = item.Type
		if item.IsBox() {
			p.Reward = outcome.WeightedPick(s.src, s.catalog.RewardBuckets(), shop.NoReward)
		}
		p.User = user

		entry := ledger.Entry(userID, -item.Price, 0, model.TxTypeShop, "mua "+item.ID)
		return s.store.Commit(ctx, []model.Transaction{entry}, user)
	})
	if err != nil {
		return nil, err
	}

	// The purchase is committed at this point; a failed reward row is only logged.
	reward := model.Reward{
		ID:        idgen.NewID(),
		UserID:    userID,
		Type:      p.Reward,
		CreatedAt: time.Now(),
	}
	if err := s.rewards.CreateReward(ctx, reward); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Str("reward", p.Reward).Msg("Failed to record reward")
	}

	log.Info().
		Int64("user_id", userID).
		Str("item", item.ID).
		Str("reward", p.Reward).
		Msg("Shop purchase")
	return p, nil
}

// Rewards lists a user's most recent rewards.
func (s *ShopService) Rewards(ctx context.Context, userID int64, limit int) ([]model.Reward, error) {
	return s.rewards.ListRewards(ctx, userID, limit)
}
