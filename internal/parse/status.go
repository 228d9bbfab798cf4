package parse

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// KeyValues consumes "key: value" status output into an ordered map of
// lowercased keys. Lines without a colon are ignored.
func KeyValues(raw string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

var startLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ActiveSession parses `ung track status` output into the running
// session, or nil when the tool reports none. The start time must be
// parseable; a session row with a garbled start fails with a parse
// error so the monitor can stay Idle instead of showing bad data.
func ActiveSession(raw string) (*domain.ActiveSession, error) {
	if strings.Contains(strings.ToLower(raw), "no active session") {
		return nil, nil
	}

	kv := KeyValues(raw)
	project := kv["project"]
	started := kv["started"]
	if started == "" {
		started = kv["start"]
	}
	if project == "" && started == "" {
		return nil, nil
	}
	if started == "" {
		return nil, toolerr.New(toolerr.KindParse, "parse.active_session", "session status missing start time")
	}

	var startedAt time.Time
	var err error
	for _, layout := range startLayouts {
		startedAt, err = time.ParseInLocation(layout, started, time.Local)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, toolerr.New(toolerr.KindParse, "parse.active_session", "unparseable start time: "+started)
	}

	return &domain.ActiveSession{
		Project:    project,
		ClientName: blankToEmpty(kv["client"]),
		StartedAt:  startedAt,
	}, nil
}

// Dashboard parses `ung dashboard` key/value output into the aggregate
// snapshot. Absent or garbled values contribute zero; the snapshot is
// always recomputed wholesale from whatever the tool reported.
func Dashboard(raw string) (domain.DashboardMetrics, error) {
	kv := KeyValues(raw)
	if len(kv) == 0 {
		return domain.DashboardMetrics{}, toolerr.New(toolerr.KindParse, "parse.dashboard", "no recognizable key/value output")
	}

	metrics := domain.DashboardMetrics{
		TotalRevenue:   Amount(kv["total revenue"]),
		PendingRevenue: Amount(kv["pending"]),
		OverdueRevenue: Amount(kv["overdue"]),
		HoursThisMonth: hoursValue(kv["hours this month"]),
		ProjectedHours: hoursValue(kv["projected hours"]),
		InvoiceCount:   intValue(kv["invoices"]),
		ClientCount:    intValue(kv["clients"]),
		ContractCount:  intValue(kv["contracts"]),
		OpenInvoices:   intValue(kv["open invoices"]),
		TrackedToday:   hoursValue(kv["tracked today"]),
	}
	return metrics, nil
}

// TodayHours parses the tool's tracked-today report into decimal
// hours. Accepts either a key/value "Total: 2h 30m" shape or a bare
// duration token.
func TodayHours(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	if kv := KeyValues(raw); len(kv) > 0 {
		for _, key := range []string{"total", "today", "tracked today", "hours"} {
			if value, ok := kv[key]; ok {
				return hoursValue(value), nil
			}
		}
	}
	return hoursValue(raw), nil
}

// hoursValue converts a duration token to decimal hours, falling back
// to plain decimal parsing for shapes like "32.5".
func hoursValue(token string) decimal.Decimal {
	token = strings.TrimSpace(token)
	if token == "" {
		return decimal.Zero
	}
	if strings.ContainsAny(strings.ToLower(token), ":m") {
		minutes := DurationMinutes(token)
		return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
	}
	if value, err := decimal.NewFromString(strings.TrimSuffix(strings.ToLower(token), "h")); err == nil {
		return value
	}
	return decimal.Zero
}

func intValue(token string) int {
	value, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0
	}
	return value
}
