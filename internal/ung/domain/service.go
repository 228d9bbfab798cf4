package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// MutationOp names an operation that changes state in the ung store.
type MutationOp string

const (
	OpCreate        MutationOp = "create"
	OpUpdate        MutationOp = "update"
	OpDelete        MutationOp = "delete"
	OpStartTracking MutationOp = "start"
	OpStopTracking  MutationOp = "stop"
	OpMarkPaid      MutationOp = "mark_paid"
	OpSend          MutationOp = "send"
)

// MutationRequest describes a state change requested by a UI surface.
// Destructive operations must carry Confirm; they are refused otherwise.
type MutationRequest struct {
	Entity  EntityType        `json:"entity"`
	Op      MutationOp        `json:"op"`
	ID      int64             `json:"id,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	Confirm bool              `json:"confirm,omitempty"`
}

// Destructive reports whether the request deletes data.
func (r MutationRequest) Destructive() bool {
	return r.Op == OpDelete
}

// MutationResult carries the tool's confirmation text back to the caller.
type MutationResult struct {
	Message string `json:"message"`
}

// ListOptions filters a list fetch. A zero value lists everything.
type ListOptions struct {
	Status     string `json:"status,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	ActiveOnly bool   `json:"active_only,omitempty"`
}

// ScopeKey folds the options into a cache scope suffix.
func (o ListOptions) ScopeKey() string {
	key := o.Status + "|" + o.ClientName
	if o.ActiveOnly {
		key += "|active"
	}
	if key == "|" {
		return ""
	}
	return key
}

// Gateway is one backend able to execute ung operations: either the
// local CLI (through the command bus and the output parser) or the
// remote HTTP API. Implementations surface toolerr-classified errors.
type Gateway interface {
	ListInvoices(ctx context.Context, opts ListOptions) ([]Invoice, error)
	ListClients(ctx context.Context, opts ListOptions) ([]Client, error)
	ListContracts(ctx context.Context, opts ListOptions) ([]Contract, error)
	ListExpenses(ctx context.Context, opts ListOptions) ([]Expense, error)
	ListSessions(ctx context.Context, opts ListOptions) ([]TrackingSession, error)
	Dashboard(ctx context.Context) (DashboardMetrics, error)
	ActiveSession(ctx context.Context) (*ActiveSession, error)
	TodayHours(ctx context.Context) (decimal.Decimal, error)
	Mutate(ctx context.Context, req MutationRequest) (MutationResult, error)
}

// Service is the mediation layer exposed to UI surfaces. Reads are
// cached; mutations bypass the cache and invalidate the affected type.
type Service interface {
	Gateway

	// Refresh drops cached entries for one entity type, or for all
	// types when entity is empty.
	Refresh(entity EntityType)
}

var (
	ErrUnknownEntity       = errors.New("unknown_entity")
	ErrUnknownOperation    = errors.New("unknown_operation")
	ErrConfirmationNeeded  = errors.New("confirmation_required")
	ErrMissingRecordID     = errors.New("missing_record_id")
	ErrEntityNotMutable    = errors.New("entity_not_mutable")
	ErrNoSnapshotAvailable = errors.New("no_snapshot_available")
)
