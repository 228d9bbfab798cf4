package parse

import (
	"strconv"
	"strings"

	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// Each tabular shape maps columns positionally. A line short of the
// minimum column count for its shape is skipped, never fatal; a line
// whose id column fails to parse is likewise discarded, since a record
// without its identity cannot be cached or mutated.

// Invoices parses `ung invoice list` output.
// Columns: ID  Number  Amount  Status  Client  DueDate.
func Invoices(raw string) ([]domain.Invoice, error) {
	lines, err := dataLines("parse.invoices", raw, "id")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Invoice, 0, len(lines))
	for _, line := range lines {
		cols := SplitColumns(line)
		if len(cols) < 5 {
			continue
		}
		id, ok := recordID(cols[0])
		if !ok {
			continue
		}
		amount, currency := Money(cols[2])
		inv := domain.Invoice{
			ID:         id,
			Number:     cols[1],
			Amount:     amount,
			Currency:   currency,
			Status:     domain.InvoiceStatus(strings.ToLower(cols[3])),
			ClientName: cols[4],
		}
		if len(cols) > 5 {
			inv.DueDate = cols[5]
		}
		out = append(out, inv)
	}
	return out, nil
}

// Clients parses `ung client list` output.
// Columns: ID  Name  Email  Address  TaxID (email onward optional).
func Clients(raw string) ([]domain.Client, error) {
	lines, err := dataLines("parse.clients", raw, "id")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Client, 0, len(lines))
	for _, line := range lines {
		cols := SplitColumns(line)
		if len(cols) < 2 {
			continue
		}
		id, ok := recordID(cols[0])
		if !ok {
			continue
		}
		if cols[1] == "" {
			continue
		}
		cl := domain.Client{ID: id, Name: cols[1]}
		if len(cols) > 2 {
			cl.Email = blankToEmpty(cols[2])
		}
		if len(cols) > 3 {
			cl.Address = blankToEmpty(cols[3])
		}
		if len(cols) > 4 {
			cl.TaxID = blankToEmpty(cols[4])
		}
		out = append(out, cl)
	}
	return out, nil
}

// Contracts parses `ung contract list` output.
// Columns: ID  Name  Client  Type  Rate  Active.
func Contracts(raw string) ([]domain.Contract, error) {
	lines, err := dataLines("parse.contracts", raw, "id")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Contract, 0, len(lines))
	for _, line := range lines {
		cols := SplitColumns(line)
		if len(cols) < 5 {
			continue
		}
		id, ok := recordID(cols[0])
		if !ok {
			continue
		}
		ct := domain.Contract{
			ID:         id,
			Name:       cols[1],
			ClientName: cols[2],
			Type:       domain.ContractType(strings.ToLower(cols[3])),
			Rate:       Amount(cols[4]),
		}
		if len(cols) > 5 {
			ct.Active = parseBool(cols[5])
		}
		out = append(out, ct)
	}
	return out, nil
}

// Expenses parses `ung expense list` output.
// Columns: ID  Description  Amount  Category  Date.
func Expenses(raw string) ([]domain.Expense, error) {
	lines, err := dataLines("parse.expenses", raw, "id")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Expense, 0, len(lines))
	for _, line := range lines {
		cols := SplitColumns(line)
		if len(cols) < 4 {
			continue
		}
		id, ok := recordID(cols[0])
		if !ok {
			continue
		}
		exp := domain.Expense{
			ID:          id,
			Description: cols[1],
			Amount:      Amount(cols[2]),
			Category:    cols[3],
		}
		if len(cols) > 4 {
			exp.Date = cols[4]
		}
		out = append(out, exp)
	}
	return out, nil
}

// Sessions parses `ung track list` output.
// Columns: ID  Project  Client  Date  Duration  Billable.
func Sessions(raw string) ([]domain.TrackingSession, error) {
	lines, err := dataLines("parse.sessions", raw, "id")
	if err != nil {
		return nil, err
	}

	out := make([]domain.TrackingSession, 0, len(lines))
	for _, line := range lines {
		cols := SplitColumns(line)
		if len(cols) < 5 {
			continue
		}
		id, ok := recordID(cols[0])
		if !ok {
			continue
		}
		sess := domain.TrackingSession{
			ID:         id,
			Project:    cols[1],
			ClientName: blankToEmpty(cols[2]),
			Date:       cols[3],
			Minutes:    DurationMinutes(cols[4]),
		}
		if len(cols) > 5 {
			sess.Billable = parseBool(cols[5])
		}
		out = append(out, sess)
	}
	return out, nil
}

func recordID(token string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func parseBool(token string) bool {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "yes", "y", "true", "active", "billable", "1", "✓":
		return true
	}
	return false
}

// blankToEmpty collapses the tool's placeholder for absent optional
// fields.
func blankToEmpty(token string) string {
	if token == "-" || token == "—" {
		return ""
	}
	return token
}
