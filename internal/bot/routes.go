package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"

	tg "github.com/hostline/hostbot/core/telegram"
	"github.com/hostline/hostbot/core/telegram/callbacks"
	"github.com/hostline/hostbot/core/telegram/commands"
	tghelpers "github.com/hostline/hostbot/core/telegram/helpers"
	"github.com/hostline/hostbot/core/telegram/router"
	"github.com/hostline/hostbot/internal/bot/session"
)

func callbackPayload(c tele.Context) string {
	return callbacks.CallbackPayload(c)
}

// stageRouter adapts the session manager to the text router: while a dialog
// is in progress, free text goes to the stage handler instead of the menu.
type stageRouter struct {
	bot *Bot
}

func (r stageRouter) InProgress(userID int64) bool {
	return r.bot.sessions.InProgress(context.Background(), userID)
}

func (r stageRouter) ManagerHandler(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	s, err := r.bot.sessions.Get(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	switch s.Stage {
	case session.StageAwaitSlots:
		return r.bot.handleSlotsInput(c, s)
	case session.StageAwaitTopUpAmount:
		return r.bot.handleTopUpInput(c, s)
	default:
		return r.bot.handleIdleText(c)
	}
}

// Register binds commands, callbacks and the text fallback onto the registry.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.HandleStart,
		Description: "Open the main menu",
		Aliases:     []string{"menu"},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     b.handleStats,
		Description: "Runtime diagnostics",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(ActMyOrders, b.handleMyOrders)
	_ = reg.RegisterCallback(ActTopUp, b.handleTopUp)
	_ = reg.RegisterCallback(ActRates, b.handleRates)
	_ = reg.RegisterCallback(ActBuy, b.handleBuy)
	_ = reg.RegisterCallback(ActBuyPlan, b.handleBuyPlan)
	_ = reg.RegisterCallback(ActConfirm, b.handleConfirm)
	_ = reg.RegisterCallback(ActCancel, b.handleCancel)
	_ = reg.RegisterCallback(ActManage, b.handleManage)

	reg.SetTextFallback(b.handleIdleText)
}

// Routes builds the full route table for the bot runtime.
func (b *Bot) Routes(reg *tg.Registry, adminID int64) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: adminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(stageRouter{bot: b}, reg, router.TextOptions{})...)
	return routes
}
