// Package domain defines the persistent records the hosting bot works with.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// User is a registered hosting customer reachable through Telegram.
type User struct {
	ID           int64     `db:"id"`
	TelegramID   int64     `db:"telegram_id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Balance      int64     `db:"balance"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
}

// Name returns the display name composed from first/last name parts.
func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RatePlan is a purchasable game-server template. Plans are managed by an
// external admin process; the bot only reads them.
type RatePlan struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Code         string `db:"code"`
	MinSlots     int    `db:"min_slots"`
	MaxSlots     int    `db:"max_slots"`
	MinPort      int    `db:"min_port"`
	MaxPort      int    `db:"max_port"`
	PricePerSlot int64  `db:"price_per_slot"`
	Active       bool   `db:"active"`
}

// SlotsInRange reports whether n is a valid slot count for the plan.
func (p RatePlan) SlotsInRange(n int) bool {
	return n >= p.MinSlots && n <= p.MaxSlots
}

// Price returns the total price for the given slot count.
func (p RatePlan) Price(slots int) int64 {
	return p.PricePerSlot * int64(slots)
}

// Location is a datacenter host pool eligible for certain rate plans.
// AllowedPlans is a space-delimited set of rate plan ids.
type Location struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	IP           string    `db:"ip"`
	CPULoad      int       `db:"cpu_load"`
	RAMLoad      int       `db:"ram_load"`
	DiskLoad     int       `db:"disk_load"`
	AllowedPlans string    `db:"allowed_plans"`
	Active       bool      `db:"active"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Hosts reports whether the location may host servers of the given plan.
func (l Location) Hosts(planID int64) bool {
	want := strconv.FormatInt(planID, 10)
	for _, id := range strings.Fields(l.AllowedPlans) {
		if id == want {
			return true
		}
	}
	return false
}

// OrderStatus is the lifecycle status of a purchased server. The bot sets
// StatusProvisioning at creation; later transitions belong to the
// provisioning pipeline.
type OrderStatus string

const (
	StatusProvisioning OrderStatus = "provisioning"
	StatusRunning      OrderStatus = "running"
	StatusStopped      OrderStatus = "stopped"
)

// Human returns a user-facing label for the status.
func (s OrderStatus) Human() string {
	switch s {
	case StatusProvisioning:
		return "Installing"
	case StatusRunning:
		return "Running"
	case StatusStopped:
		return "Stopped"
	default:
		return string(s)
	}
}

// OrderSchemaVersion marks the order row layout written by this bot.
const OrderSchemaVersion = 2

// Order is one purchased rate plan instance bound to a user, a location and
// a network port.
type Order struct {
	ID         int64       `db:"id"`
	UserID     int64       `db:"user_id"`
	PlanID     int64       `db:"plan_id"`
	LocationID int64       `db:"location_id"`
	Slots      int         `db:"slots"`
	Port       int         `db:"port"`
	Password   string      `db:"password"`
	Status     OrderStatus `db:"status"`
	Version    int         `db:"version"`
	CreatedAt  time.Time   `db:"created_at"`
	ExpiresAt  time.Time   `db:"expires_at"`
}

// OrderWithLocation is an order joined with its location for listings.
type OrderWithLocation struct {
	Order
	LocationName string `db:"location_name"`
	LocationIP   string `db:"location_ip"`
}

// Address returns the reachable host:port of the provisioned server.
func (o OrderWithLocation) Address() string {
	return o.LocationIP + ":" + strconv.Itoa(o.Port)
}
