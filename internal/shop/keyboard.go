package shop

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"
)

// CallbackShopBuy prefixes buy button data: shop_buy:<id>.
const CallbackShopBuy = "shop_buy:"

// BuildShopPanel creates one buy button per item, two per row.
func BuildShopPanel(items []Item) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	var rows []tele.Row
	var current []tele.Btn
	for i, it := range items {
		btn := markup.Data(fmt.Sprintf("%s (%d💰)", it.Name, it.Price), CallbackShopBuy+it.ID)
		current = append(current, btn)
		if len(current) == 2 || i == len(items)-1 {
			rows = append(rows, markup.Row(current...))
			current = nil
		}
	}

	markup.Inline(rows...)
	return markup
}

// DecodeBuyCallback extracts the item ID from buy button data.
func DecodeBuyCallback(data string) (string, bool) {
	if !strings.HasPrefix(data, CallbackShopBuy) {
		return "", false
	}
	id := strings.TrimPrefix(data, CallbackShopBuy)
	return id, id != ""
}
