// Package bot wires the conversation: menu, purchase dialog, top-up dialog
// and the callback actions behind the inline keyboards.
package bot

import (
	"errors"
	"strconv"
	"strings"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/hostline/hostbot/core/logger"
	tghelpers "github.com/hostline/hostbot/core/telegram/helpers"
	"github.com/hostline/hostbot/internal/bot/session"
	"github.com/hostline/hostbot/internal/domain"
	"github.com/hostline/hostbot/internal/payments"
	"github.com/hostline/hostbot/internal/service/accounts"
	"github.com/hostline/hostbot/internal/service/catalog"
	"github.com/hostline/hostbot/internal/service/orders"
	"github.com/hostline/hostbot/internal/storage"
)

// Bot holds the services the conversation handlers call into.
type Bot struct {
	sessions   session.Manager
	accounts   *accounts.Service
	catalog    *catalog.Service
	orders     *orders.Service
	payments   payments.FormGenerator
	supportURL string
}

// New assembles the bot handlers.
func New(
	sessions session.Manager,
	acc *accounts.Service,
	cat *catalog.Service,
	ord *orders.Service,
	pay payments.FormGenerator,
	supportURL string,
) *Bot {
	return &Bot{
		sessions:   sessions,
		accounts:   acc,
		catalog:    cat,
		orders:     ord,
		payments:   pay,
		supportURL: supportURL,
	}
}

func senderName(u *tele.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ensureUser registers the sender on first contact and reports the generated
// credentials once.
func (b *Bot) ensureUser(c tele.Context) (domain.User, error) {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	reg, err := b.accounts.EnsureRegistered(ctx, sender.ID, sender.Username, senderName(sender))
	if err != nil {
		return domain.User{}, err
	}
	if reg.Created {
		if err := tghelpers.SendText(c, textRegistered(reg.User.Name(), reg.User.ID, reg.User.Username, reg.Password)); err != nil {
			return domain.User{}, err
		}
	}
	return reg.User, nil
}

func (b *Bot) showMenu(c tele.Context, user domain.User) error {
	return tghelpers.SendText(c, textMenu(user.Name(), user.ID, user.Balance), menuKeyboard(b.supportURL))
}

// HandleStart handles /start: register if needed and render the menu.
func (b *Bot) HandleStart(c tele.Context) error {
	user, err := b.ensureUser(c)
	if err != nil {
		return err
	}
	return b.showMenu(c, user)
}

// handleIdleText is the fallback for free text outside any dialog. First
// contact registers the account; everyone gets the menu.
func (b *Bot) handleIdleText(c tele.Context) error {
	return b.HandleStart(c)
}

// handleSlotsInput consumes the slot count while in StageAwaitSlots.
func (b *Bot) handleSlotsInput(c tele.Context, s session.Session) error {
	ctx := tghelpers.BuildContext(c)

	plan, err := b.catalog.PlanByID(ctx, s.PlanID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Plan deactivated mid-dialog: abort the draft.
			_ = b.sessions.Reset(ctx, s.TelegramID)
			return tghelpers.SendText(c, textNoPlans())
		}
		return err
	}

	n, convErr := strconv.Atoi(strings.TrimSpace(c.Text()))
	if convErr != nil || !plan.SlotsInRange(n) {
		return tghelpers.SendText(c, textEnterSlots(plan), cancelKeyboard(false))
	}

	if err := b.sessions.SetSlots(ctx, s.TelegramID, n); err != nil {
		return err
	}
	return tghelpers.SendText(c, textConfirmOrder(plan, n, plan.Price(n)), confirmKeyboard())
}

// handleTopUpInput consumes the amount while in StageAwaitTopUpAmount.
func (b *Bot) handleTopUpInput(c tele.Context, s session.Session) error {
	ctx := tghelpers.BuildContext(c)

	amount, convErr := strconv.ParseInt(strings.TrimSpace(c.Text()), 10, 64)
	if convErr != nil || !payments.ValidAmount(amount) {
		return tghelpers.SendText(c, textTopUpPrompt(), cancelKeyboard(false))
	}

	user, err := b.ensureUser(c)
	if err != nil {
		return err
	}
	form, err := b.payments.NewForm(ctx, user.ID, amount)
	if err != nil {
		return err
	}
	if err := b.sessions.Reset(ctx, s.TelegramID); err != nil {
		return err
	}
	return tghelpers.SendText(c, textTopUpForm(form.Amount, form.Reference))
}

// handleTopUp either issues a form for a preset amount (one-click buttons) or
// asks for the amount.
func (b *Bot) handleTopUp(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	payload, err := ParseTopUp(callbackPayload(c))
	if err != nil || (payload.Preset && !payments.ValidAmount(payload.Amount)) {
		payload = TopUpPayload{}
	}

	if payload.Preset {
		user, err := b.ensureUser(c)
		if err != nil {
			return err
		}
		form, err := b.payments.NewForm(ctx, user.ID, payload.Amount)
		if err != nil {
			return err
		}
		return tghelpers.SendText(c, textTopUpForm(form.Amount, form.Reference))
	}

	if err := b.sessions.SetStage(ctx, c.Sender().ID, session.StageAwaitTopUpAmount); err != nil {
		return err
	}
	return tghelpers.SendText(c, textTopUpPrompt(), cancelKeyboard(false))
}

// handleMyOrders lists the user's orders with management buttons.
func (b *Bot) handleMyOrders(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	user, err := b.ensureUser(c)
	if err != nil {
		return err
	}
	list, err := b.catalog.UserOrders(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, textNoOrders(user.Name()))
	}
	return tghelpers.SendText(c, textOrders(user.Name(), list), ordersKeyboard(list))
}

// handleRates lists available plans.
func (b *Bot) handleRates(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	user, err := b.ensureUser(c)
	if err != nil {
		return err
	}
	plans, err := b.catalog.ActivePlans(ctx)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		return tghelpers.SendText(c, textNoPlans())
	}
	return tghelpers.SendText(c, textRates(user.Name(), plans))
}

// handleBuy shows the plan picker.
func (b *Bot) handleBuy(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	plans, err := b.catalog.ActivePlans(ctx)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		return tghelpers.SendText(c, textNoPlans())
	}
	return tghelpers.SendText(c, textPickPlan(), plansKeyboard(plans))
}

// handleBuyPlan drafts the chosen plan and asks for the slot count.
func (b *Bot) handleBuyPlan(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	payload, err := ParseBuyPlan(callbackPayload(c))
	if err != nil {
		logger.Warn(ctx, "tg", "callback.bad_payload",
			slog.String("handler", ActBuyPlan),
			slog.String("payload", logger.SanitizeLimit(callbackPayload(c), 64)),
		)
		return tghelpers.SendText(c, textOops())
	}
	plan, err := b.catalog.PlanByID(ctx, payload.PlanID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tghelpers.SendText(c, textNoPlans())
		}
		return err
	}
	if err := b.sessions.SetDraft(ctx, c.Sender().ID, plan.ID); err != nil {
		return err
	}
	return tghelpers.SendText(c, textEnterSlots(plan), cancelKeyboard(false))
}

// handleConfirm runs the purchase workflow for the drafted plan.
func (b *Bot) handleConfirm(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	tgID := c.Sender().ID

	s, err := b.sessions.Get(ctx, tgID)
	if err != nil {
		return err
	}
	user, err := b.ensureUser(c)
	if err != nil {
		return err
	}

	// A confirm without a complete draft is a stale button press.
	if s.PlanID == 0 || s.Slots == 0 {
		if err := b.sessions.Reset(ctx, tgID); err != nil {
			return err
		}
		return b.showMenu(c, user)
	}

	plan, err := b.catalog.PlanByID(ctx, s.PlanID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = b.sessions.Reset(ctx, tgID)
			return tghelpers.SendText(c, textNoPlans())
		}
		return err
	}

	order, confirmErr := b.orders.Confirm(ctx, user, plan, s.Slots)
	if err := b.sessions.Reset(ctx, tgID); err != nil {
		return err
	}

	var insufficient *orders.InsufficientBalanceError
	switch {
	case confirmErr == nil:
		if err := tghelpers.SendText(c, textOrderSuccess(order.ID)); err != nil {
			return err
		}
	case errors.As(confirmErr, &insufficient):
		shortfall := insufficient.Shortfall()
		if err := tghelpers.SendText(c, textNeedTopUp(shortfall), needTopUpKeyboard(shortfall)); err != nil {
			return err
		}
	case errors.Is(confirmErr, orders.ErrNoLocation), errors.Is(confirmErr, orders.ErrNoFreePort):
		if err := tghelpers.SendText(c, textNoCapacity()); err != nil {
			return err
		}
	default:
		_ = tghelpers.SendText(c, textOops())
		return confirmErr
	}

	// Balance may have changed; re-read for the menu line.
	if fresh, err := tghelpers.CurrentUser[domain.User](ctx, b.accounts, tgID); err == nil {
		user = fresh
	}
	return b.showMenu(c, user)
}

// handleCancel aborts any dialog in progress.
func (b *Bot) handleCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	payload := ParseCancel(callbackPayload(c))
	if err := b.sessions.Reset(ctx, c.Sender().ID); err != nil {
		return err
	}
	if payload.ShowMenu {
		user, err := b.ensureUser(c)
		if err != nil {
			return err
		}
		return b.showMenu(c, user)
	}
	return tghelpers.SendText(c, textCancelled())
}

// handleStats reports runtime diagnostics. Registered hidden and admin-only.
func (b *Bot) handleStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sessions, err := b.sessions.Len(ctx)
	if err != nil {
		return err
	}
	plans, err := b.catalog.ActivePlans(ctx)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, textStats(sessions, len(plans)))
}

// handleManage acknowledges a manage button. Server control from the bot is
// not implemented yet.
func (b *Bot) handleManage(c tele.Context) error {
	payload, err := ParseManage(callbackPayload(c))
	if err != nil {
		return tghelpers.SendText(c, textOops())
	}
	return tghelpers.SendText(c, textManageStub(payload.OrderID))
}
