package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies one of the record kinds owned by the ung store.
type EntityType string

const (
	EntityInvoice   EntityType = "invoice"
	EntityClient    EntityType = "client"
	EntityContract  EntityType = "contract"
	EntityExpense   EntityType = "expense"
	EntityTracking  EntityType = "tracking"
	EntityDashboard EntityType = "dashboard"
)

// EntityTypes lists every cacheable entity type in a fixed order.
var EntityTypes = []EntityType{
	EntityInvoice,
	EntityClient,
	EntityContract,
	EntityExpense,
	EntityTracking,
	EntityDashboard,
}

// Valid reports whether t names a known entity type.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// InvoiceStatus is owned by the ung tool; the client only requests
// transitions and re-fetches.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// InvoiceStatuses is the display order used when grouping invoices.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusOverdue,
	InvoiceStatusPending,
	InvoiceStatusSent,
	InvoiceStatusDraft,
	InvoiceStatusPaid,
}

// Invoice is a billed amount owed by a client.
type Invoice struct {
	ID         int64           `json:"id"`
	Number     string          `json:"number"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     InvoiceStatus   `json:"status"`
	ClientName string          `json:"client_name"`
	DueDate    string          `json:"due_date,omitempty"`
}

// Client is a billing counterparty. Contracts and invoices reference it
// by name, not id; the text protocol exposes no foreign keys.
type Client struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// ContractType classifies how a contract is billed.
type ContractType string

const (
	ContractHourly    ContractType = "hourly"
	ContractRetainer  ContractType = "retainer"
	ContractFixed     ContractType = "fixed"
	ContractMilestone ContractType = "milestone"
)

// ContractTypes is the display order used when grouping contracts.
var ContractTypes = []ContractType{
	ContractHourly,
	ContractRetainer,
	ContractFixed,
	ContractMilestone,
}

// Contract is an agreement with a client.
type Contract struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	ClientName string          `json:"client_name"`
	Type       ContractType    `json:"type"`
	Rate       decimal.Decimal `json:"rate"`
	Active     bool            `json:"active"`
}

// Expense is a cost entry.
type Expense struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date,omitempty"`
}

// TrackingSession is a completed (or at least recorded) block of tracked time.
type TrackingSession struct {
	ID         int64  `json:"id"`
	Project    string `json:"project"`
	ClientName string `json:"client_name,omitempty"`
	Date       string `json:"date,omitempty"`
	Minutes    int    `json:"minutes"`
	Billable   bool   `json:"billable"`
}

// ActiveSession is the at-most-one running tracking session. It is
// polled from the tool, never locally authoritative.
type ActiveSession struct {
	Project    string    `json:"project"`
	ClientName string    `json:"client_name,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

// DashboardMetrics is an aggregate snapshot, recomputed wholesale on
// each fetch and never mutated directly.
type DashboardMetrics struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	PendingRevenue decimal.Decimal `json:"pending_revenue"`
	OverdueRevenue decimal.Decimal `json:"overdue_revenue"`
	HoursThisMonth decimal.Decimal `json:"hours_this_month"`
	ProjectedHours decimal.Decimal `json:"projected_hours"`
	InvoiceCount   int             `json:"invoice_count"`
	ClientCount    int             `json:"client_count"`
	ContractCount  int             `json:"contract_count"`
	OpenInvoices   int             `json:"open_invoices"`
	TrackedToday   decimal.Decimal `json:"tracked_today"`
}
