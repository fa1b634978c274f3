package handler

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/service"
	"telegram-economy-bot/internal/shop"
)

const rewardsLimit = 10

// ShopHandler handles shop-related commands.
type ShopHandler struct {
	shopService *service.ShopService
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(shopService *service.ShopService) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

// HandleShop handles /shop and shows the catalog with a buy button per item.
func (h *ShopHandler) HandleShop(c tele.Context) error {
	items := h.shopService.Items()
	return c.Send(shop.FormatCatalog(items), shop.BuildShopPanel(items))
}

// HandleBuy handles /buy <id>.
func (h *ShopHandler) HandleBuy(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Cách dùng: /buy <id>\nXem danh sách bằng /shop")
	}

	ctx, cancel := requestContext()
	defer cancel()

	p, err := h.shopService.Buy(ctx, c.Sender().ID, args[0])
	if err != nil {
		return replyError(c, err)
	}
	return c.Reply(FormatPurchase(p))
}

// HandleRewards handles /rewards and lists the sender's latest purchases.
func (h *ShopHandler) HandleRewards(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	rewards, err := h.shopService.Rewards(ctx, c.Sender().ID, rewardsLimit)
	if err != nil {
		return replyError(c, err)
	}
	if len(rewards) == 0 {
		return c.Reply("Bạn chưa mua gì cả. Xem /shop nhé!")
	}

	var b strings.Builder
	b.WriteString("🎁 Quà gần đây của bạn:\n")
	for _, r := range rewards {
		fmt.Fprintf(&b, "• %s – %s\n", r.CreatedAt.Format("02/01 15:04"), r.Type)
	}
	return c.Reply(strings.TrimRight(b.String(), "\n"))
}

// HandleShopCallback handles shop button callbacks.
func (h *ShopHandler) HandleShopCallback(c tele.Context, data string) error {
	itemID, ok := shop.DecodeBuyCallback(data)
	if !ok {
		return c.Respond()
	}

	ctx, cancel := requestContext()
	defer cancel()

	p, err := h.shopService.Buy(ctx, c.Sender().ID, itemID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: errorText(err), ShowAlert: true})
	}

	_ = c.Respond(&tele.CallbackResponse{Text: "✅ Mua thành công " + p.Item.Name})
	return c.Send(fmt.Sprintf("@%s\n%s", senderName(c.Sender()), FormatPurchase(p)))
}

// FormatPurchase describes a completed purchase.
func FormatPurchase(p *service.Purchase) string {
	head := fmt.Sprintf("🛒 Bạn đã mua %s với giá %d coin.", p.Item.Name, p.Item.Price)
	tail := fmt.Sprintf("💰 Coin còn lại: %d", p.User.TopCoin)
	if !p.Item.IsBox() {
		return fmt.Sprintf("%s\n🎁 Quà sẽ do admin xử lý.\n%s", head, tail)
	}
	if p.Reward == shop.NoReward {
		return fmt.Sprintf("%s\n📦 Bạn mở Box và... Hụt 😢\n%s", head, tail)
	}
	return fmt.Sprintf("%s\n📦 Bạn mở Box và nhận: %s\n%s", head, p.Reward, tail)
}
