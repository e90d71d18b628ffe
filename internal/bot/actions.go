package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback action codes. The set is closed: every inline button the bot emits
// carries one of these, and the callback router rejects anything else.
const (
	ActMyOrders = "my_orders"
	ActTopUp    = "topup"
	ActRates    = "rates"
	ActBuy      = "buy"
	ActBuyPlan  = "buy_plan"
	ActConfirm  = "confirm"
	ActCancel   = "cancel"
	ActManage   = "manage"
)

// BuyPlanPayload selects the rate plan to draft.
type BuyPlanPayload struct {
	PlanID int64
}

// ParseBuyPlan validates a buy_plan payload at the transport boundary.
func ParseBuyPlan(raw string) (BuyPlanPayload, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return BuyPlanPayload{}, fmt.Errorf("bad buy_plan payload %q", raw)
	}
	return BuyPlanPayload{PlanID: id}, nil
}

// TopUpPayload optionally carries a preset amount for one-click top-up
// buttons (e.g. "top up the missing 500").
type TopUpPayload struct {
	Amount int64
	Preset bool
}

// ParseTopUp accepts an empty payload (ask for the amount) or a preset amount.
func ParseTopUp(raw string) (TopUpPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TopUpPayload{}, nil
	}
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return TopUpPayload{}, fmt.Errorf("bad topup payload %q", raw)
	}
	return TopUpPayload{Amount: amount, Preset: true}, nil
}

// CancelPayload tells the cancel handler whether to re-render the menu.
type CancelPayload struct {
	ShowMenu bool
}

// ParseCancel treats anything but the "menu" marker as a silent cancel.
func ParseCancel(raw string) CancelPayload {
	return CancelPayload{ShowMenu: strings.TrimSpace(raw) == "menu"}
}

// ManagePayload selects an order for management.
type ManagePayload struct {
	OrderID int64
}

// ParseManage validates a manage payload.
func ParseManage(raw string) (ManagePayload, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return ManagePayload{}, fmt.Errorf("bad manage payload %q", raw)
	}
	return ManagePayload{OrderID: id}, nil
}
