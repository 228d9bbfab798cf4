// Package viewmodel composes cached records into presentation trees
// consumed by the UI surfaces. It has no knowledge of how the tree is
// rendered. Summary rows are always computed from the same snapshot as
// the leaf rows beneath them, so they cannot diverge.
package viewmodel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Andriiklymiuk/ung-sub008/internal/session"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// NodeKind discriminates tree rows.
type NodeKind string

const (
	KindSummary NodeKind = "summary"
	KindAction  NodeKind = "action"
	KindSection NodeKind = "section"
	KindRecord  NodeKind = "record"
)

// Node is one row of a presentation tree.
type Node struct {
	Kind      NodeKind `json:"kind"`
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle,omitempty"`
	Action    string   `json:"action,omitempty"`
	Collapsed bool     `json:"collapsed,omitempty"`
	Record    any      `json:"record,omitempty"`
	Children  []Node   `json:"children,omitempty"`
}

func section(title string, collapsed bool, children []Node) Node {
	return Node{
		Kind:      KindSection,
		Title:     fmt.Sprintf("%s (%d)", title, len(children)),
		Collapsed: collapsed,
		Children:  children,
	}
}

// InvoicesView groups invoices by status in a fixed order. Empty
// status sections are omitted. Statuses outside the known set get
// their own trailing sections so every counted invoice stays visible.
func InvoicesView(invoices []domain.Invoice) Node {
	root := Node{Kind: KindSection, Title: "Invoices"}
	root.Children = append(root.Children,
		Node{Kind: KindSummary, Title: fmt.Sprintf("%d invoices", len(invoices)), Subtitle: sumByCurrency(invoices)},
		Node{Kind: KindAction, Title: "New Invoice", Action: "invoice.create"},
	)

	byStatus := make(map[domain.InvoiceStatus][]Node)
	for _, inv := range invoices {
		byStatus[inv.Status] = append(byStatus[inv.Status], Node{
			Kind:     KindRecord,
			Title:    inv.Number,
			Subtitle: fmt.Sprintf("%s · %s %s", inv.ClientName, inv.Amount.StringFixed(2), inv.Currency),
			Record:   inv,
		})
	}
	for _, status := range domain.InvoiceStatuses {
		children := byStatus[status]
		if len(children) == 0 {
			continue
		}
		delete(byStatus, status)
		root.Children = append(root.Children, section(titleCase(string(status)), false, children))
	}

	extras := make([]domain.InvoiceStatus, 0, len(byStatus))
	for status := range byStatus {
		extras = append(extras, status)
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	for _, status := range extras {
		root.Children = append(root.Children, section(titleCase(string(status)), false, byStatus[status]))
	}
	return root
}

// ContractsView groups contracts by type in a fixed order. Empty type
// sections stay visible but collapsed.
func ContractsView(contracts []domain.Contract) Node {
	active := 0
	for _, ct := range contracts {
		if ct.Active {
			active++
		}
	}

	root := Node{Kind: KindSection, Title: "Contracts"}
	root.Children = append(root.Children,
		Node{Kind: KindSummary, Title: fmt.Sprintf("%d contracts", len(contracts)), Subtitle: fmt.Sprintf("%d active", active)},
		Node{Kind: KindAction, Title: "New Contract", Action: "contract.create"},
	)

	byType := make(map[domain.ContractType][]Node)
	for _, ct := range contracts {
		byType[ct.Type] = append(byType[ct.Type], Node{
			Kind:     KindRecord,
			Title:    ct.Name,
			Subtitle: fmt.Sprintf("%s · %s/h", ct.ClientName, ct.Rate.StringFixed(2)),
			Record:   ct,
		})
	}
	for _, kind := range domain.ContractTypes {
		children := byType[kind]
		root.Children = append(root.Children, section(titleCase(string(kind)), len(children) == 0, children))
	}
	return root
}

// ExpensesView groups expenses by category, sorted alphabetically.
func ExpensesView(expenses []domain.Expense) Node {
	total := decimal.Zero
	byCategory := make(map[string][]Node)
	for _, exp := range expenses {
		total = total.Add(exp.Amount)
		byCategory[exp.Category] = append(byCategory[exp.Category], Node{
			Kind:     KindRecord,
			Title:    exp.Description,
			Subtitle: fmt.Sprintf("%s · %s", exp.Amount.StringFixed(2), exp.Date),
			Record:   exp,
		})
	}

	root := Node{Kind: KindSection, Title: "Expenses"}
	root.Children = append(root.Children,
		Node{Kind: KindSummary, Title: fmt.Sprintf("%d expenses", len(expenses)), Subtitle: total.StringFixed(2)},
		Node{Kind: KindAction, Title: "New Expense", Action: "expense.create"},
	)

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		root.Children = append(root.Children, section(category, false, byCategory[category]))
	}
	return root
}

// SessionsView groups tracked sessions by date, newest first.
func SessionsView(sessions []domain.TrackingSession) Node {
	totalMinutes := 0
	byDate := make(map[string][]Node)
	for _, sess := range sessions {
		totalMinutes += sess.Minutes
		byDate[sess.Date] = append(byDate[sess.Date], Node{
			Kind:     KindRecord,
			Title:    sess.Project,
			Subtitle: fmt.Sprintf("%s · %s", sess.ClientName, formatMinutes(sess.Minutes)),
			Record:   sess,
		})
	}

	root := Node{Kind: KindSection, Title: "Time Tracking"}
	root.Children = append(root.Children,
		Node{Kind: KindSummary, Title: fmt.Sprintf("%d sessions", len(sessions)), Subtitle: formatMinutes(totalMinutes)},
		Node{Kind: KindAction, Title: "Start Tracking", Action: "tracking.start"},
	)

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	for _, date := range dates {
		root.Children = append(root.Children, section(date, false, byDate[date]))
	}
	return root
}

// DashboardView flattens the aggregate metrics plus the live tracking
// snapshot into summary rows.
func DashboardView(metrics domain.DashboardMetrics, snap session.Snapshot) Node {
	root := Node{Kind: KindSection, Title: "Dashboard"}
	root.Children = append(root.Children,
		Node{Kind: KindSummary, Title: "Total Revenue", Subtitle: metrics.TotalRevenue.StringFixed(2)},
		Node{Kind: KindSummary, Title: "Pending", Subtitle: metrics.PendingRevenue.StringFixed(2)},
		Node{Kind: KindSummary, Title: "Overdue", Subtitle: metrics.OverdueRevenue.StringFixed(2)},
		Node{Kind: KindSummary, Title: "Open Invoices", Subtitle: fmt.Sprintf("%d of %d", metrics.OpenInvoices, metrics.InvoiceCount)},
		Node{Kind: KindSummary, Title: "Hours This Month", Subtitle: metrics.HoursThisMonth.StringFixed(1)},
		Node{Kind: KindSummary, Title: "Tracked Today", Subtitle: snap.TodayHours.StringFixed(1) + "h"},
	)

	if snap.State == session.StateTracking {
		root.Children = append(root.Children, Node{
			Kind:     KindSummary,
			Title:    "Tracking " + snap.Project,
			Subtitle: formatMinutes(int(snap.Elapsed.Minutes())),
		})
		root.Children = append(root.Children, Node{Kind: KindAction, Title: "Stop Tracking", Action: "tracking.stop"})
	} else {
		root.Children = append(root.Children, Node{Kind: KindAction, Title: "Start Tracking", Action: "tracking.start"})
	}
	return root
}

// sumByCurrency renders per-currency totals, e.g. "1,700.00 USD". The
// text protocol allows mixed currencies in one list.
func sumByCurrency(invoices []domain.Invoice) string {
	totals := make(map[string]decimal.Decimal)
	for _, inv := range invoices {
		currency := inv.Currency
		if currency == "" {
			currency = "USD"
		}
		totals[currency] = totals[currency].Add(inv.Amount)
	}

	currencies := make([]string, 0, len(totals))
	for currency := range totals {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	parts := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		parts = append(parts, totals[currency].StringFixed(2)+" "+currency)
	}
	return strings.Join(parts, " · ")
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
