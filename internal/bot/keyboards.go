package bot

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/hostline/hostbot/core/telegram/keyboard"
	"github.com/hostline/hostbot/internal/domain"
)

func menuKeyboard(supportURL string) *tele.ReplyMarkup {
	markup := keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
		{Text: "📦 My orders", Unique: ActMyOrders},
		{Text: "📋 Rate plans", Unique: ActRates},
		{Text: "🛒 New order", Unique: ActBuy},
		{Text: "💳 Top up balance", Unique: ActTopUp},
	}, 2)
	if supportURL != "" {
		support := tele.InlineButton{Text: "🛟 Support", URL: supportURL}
		markup.InlineKeyboard = append(markup.InlineKeyboard, []tele.InlineButton{support})
	}
	return markup
}

func plansKeyboard(plans []domain.RatePlan) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(plans)+1)
	for _, p := range plans {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   p.Name,
			Unique: ActBuyPlan,
			Data:   strconv.FormatInt(p.ID, 10),
		})
	}
	markup := keyboard.InlineButtonsNPerRow(buttons, 2)
	cancel := keyboard.InlineButtonsRows([]keyboard.InlineBtn{cancelBtn(true)})
	markup.InlineKeyboard = append(markup.InlineKeyboard, cancel.InlineKeyboard...)
	return markup
}

func cancelBtn(showMenu bool) keyboard.InlineBtn {
	b := keyboard.InlineBtn{Text: "❌ Cancel", Unique: ActCancel}
	if showMenu {
		b.Data = "menu"
	}
	return b
}

func cancelKeyboard(showMenu bool) *tele.ReplyMarkup {
	if showMenu {
		return keyboard.SingleCancelMarkup(ActCancel, "menu")
	}
	return keyboard.SingleCancelMarkup(ActCancel)
}

func confirmKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Confirm", Unique: ActConfirm},
			cancelBtn(true),
		},
	)
}

func needTopUpKeyboard(shortfall int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{
			Text:   fmt.Sprintf("💳 Top up %d RUB", shortfall),
			Unique: ActTopUp,
			Data:   strconv.FormatInt(shortfall, 10),
		},
		{Text: "📦 My orders", Unique: ActMyOrders},
	})
}

func ordersKeyboard(orders []domain.OrderWithLocation) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(orders))
	for _, o := range orders {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("Manage service #%d", o.ID),
			Unique: ActManage,
			Data:   strconv.FormatInt(o.ID, 10),
		})
	}
	return keyboard.InlineButtons(buttons)
}
