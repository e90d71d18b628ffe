package bot

import (
	"fmt"
	"strings"

	"github.com/hostline/hostbot/core/buildinfo"
	"github.com/hostline/hostbot/internal/domain"
	"github.com/hostline/hostbot/internal/payments"
)

const timeLayout = "02.01.2006 15:04"

func textRegistered(name string, userID int64, login, plainPassword string) string {
	return fmt.Sprintf(
		"%s, your hosting account #%d is ready.\nLogin: %s\nPassword: %s\nKeep the password safe, it is shown only once.",
		name, userID, login, plainPassword,
	)
}

func textMenu(name string, userID, balance int64) string {
	return fmt.Sprintf("%s, account #%d, balance: %d RUB.\nWhat would you like to do?", name, userID, balance)
}

func textEnterSlots(plan domain.RatePlan) string {
	return fmt.Sprintf(
		"Plan %s: enter the number of slots (%d to %d).",
		plan.Name, plan.MinSlots, plan.MaxSlots,
	)
}

func textConfirmOrder(plan domain.RatePlan, slots int, price int64) string {
	return fmt.Sprintf(
		"Plan %s, %d slots, total %d RUB.\nConfirm the order?",
		plan.Name, slots, price,
	)
}

func textTopUpPrompt() string {
	return fmt.Sprintf("Enter the top-up amount in RUB (up to %d).", payments.MaxTopUpAmount)
}

func textTopUpForm(amount int64, reference string) string {
	return fmt.Sprintf(
		"Top-up for %d RUB registered.\nPayment reference: %s\nYour balance is updated once the payment clears.",
		amount, reference,
	)
}

func textNeedTopUp(shortfall int64) string {
	return fmt.Sprintf("Not enough funds: you are %d RUB short.", shortfall)
}

func textOrderSuccess(orderID int64) string {
	return fmt.Sprintf("Order #%d placed. The server is being installed, you will find it under \"My orders\".", orderID)
}

func textNoCapacity() string {
	return "No suitable capacity is available for this plan right now. Nothing was charged; please try again later."
}

func textNoOrders(name string) string {
	return fmt.Sprintf("%s, you have no active services yet.", name)
}

func textOrders(name string, orders []domain.OrderWithLocation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, your orders:\n", name)
	for _, o := range orders {
		fmt.Fprintf(&b, "\nService #%d\nSince: %s\nPaid until: %s\nLocation: %s [#%d]\nIP: %s\nStatus: %s\n",
			o.ID,
			o.CreatedAt.Format(timeLayout),
			o.ExpiresAt.Format(timeLayout),
			o.LocationName, o.LocationID,
			o.Address(),
			o.Status.Human(),
		)
	}
	return b.String()
}

func textRates(name string, plans []domain.RatePlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, these plans are available:\n", name)
	for _, p := range plans {
		fmt.Fprintf(&b, "\nGame: %s\nSlots: %d - %d\nPrice: %d RUB / slot\n",
			p.Name, p.MinSlots, p.MaxSlots, p.PricePerSlot)
	}
	b.WriteString("\nWant something else or a discount? Message support, we will sort it out.")
	return b.String()
}

func textPickPlan() string {
	return "Pick the plan you are interested in:"
}

func textNoPlans() string {
	return "No plans are on sale right now, check back later."
}

func textCancelled() string {
	return "Cancelled."
}

func textManageStub(orderID int64) string {
	return fmt.Sprintf("Management for service #%d is not available from the bot yet.", orderID)
}

func textOops() string {
	return "Something went wrong, please try again."
}

func textStats(sessions, plans int) string {
	return fmt.Sprintf("hostbot %s (%s)\nLive sessions: %d\nActive plans: %d",
		buildinfo.Version, buildinfo.Commit, sessions, plans)
}
