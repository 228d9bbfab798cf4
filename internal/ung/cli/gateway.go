// Package cli is the Gateway implementation backed by the local ung
// binary: it builds argument vectors, funnels them through the command
// bus, and feeds stdout to the output parser.
package cli

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/bus"
	"github.com/Andriiklymiuk/ung-sub008/internal/parse"
	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// Gateway talks to the ung CLI through the command bus.
type Gateway struct {
	bus *bus.Bus
	log *zap.Logger
}

type Params struct {
	fx.In

	Bus *bus.Bus
	Log *zap.Logger
}

func New(p Params) *Gateway {
	return &Gateway{bus: p.Bus, log: p.Log.Named("gateway.cli")}
}

var _ domain.Gateway = (*Gateway)(nil)

func (g *Gateway) run(ctx context.Context, name string, args []string, opts bus.Options) (string, error) {
	out, err := g.bus.Enqueue(ctx, bus.Operation{Name: name, Args: args}, opts)
	if err != nil {
		return "", err
	}
	return out.Stdout, nil
}

func listArgs(entity string, opts domain.ListOptions) []string {
	args := []string{entity, "list"}
	if opts.Status != "" {
		args = append(args, "--status", opts.Status)
	}
	if opts.ClientName != "" {
		args = append(args, "--client", opts.ClientName)
	}
	if opts.ActiveOnly {
		args = append(args, "--active")
	}
	return args
}

func (g *Gateway) ListInvoices(ctx context.Context, opts domain.ListOptions) ([]domain.Invoice, error) {
	raw, err := g.run(ctx, "invoice.list", listArgs("invoice", opts), bus.Options{})
	if err != nil {
		return nil, err
	}
	return parse.Invoices(raw)
}

func (g *Gateway) ListClients(ctx context.Context, opts domain.ListOptions) ([]domain.Client, error) {
	raw, err := g.run(ctx, "client.list", listArgs("client", opts), bus.Options{})
	if err != nil {
		return nil, err
	}
	return parse.Clients(raw)
}

func (g *Gateway) ListContracts(ctx context.Context, opts domain.ListOptions) ([]domain.Contract, error) {
	raw, err := g.run(ctx, "contract.list", listArgs("contract", opts), bus.Options{})
	if err != nil {
		return nil, err
	}
	return parse.Contracts(raw)
}

func (g *Gateway) ListExpenses(ctx context.Context, opts domain.ListOptions) ([]domain.Expense, error) {
	raw, err := g.run(ctx, "expense.list", listArgs("expense", opts), bus.Options{})
	if err != nil {
		return nil, err
	}
	return parse.Expenses(raw)
}

func (g *Gateway) ListSessions(ctx context.Context, opts domain.ListOptions) ([]domain.TrackingSession, error) {
	raw, err := g.run(ctx, "track.list", listArgs("track", opts), bus.Options{})
	if err != nil {
		return nil, err
	}
	return parse.Sessions(raw)
}

func (g *Gateway) Dashboard(ctx context.Context) (domain.DashboardMetrics, error) {
	raw, err := g.run(ctx, "dashboard", []string{"dashboard"}, bus.Options{})
	if err != nil {
		return domain.DashboardMetrics{}, err
	}
	return parse.Dashboard(raw)
}

func (g *Gateway) ActiveSession(ctx context.Context) (*domain.ActiveSession, error) {
	raw, err := g.run(ctx, "track.status", []string{"track", "status"}, bus.Options{})
	if err != nil {
		return nil, err
	}
	return parse.ActiveSession(raw)
}

func (g *Gateway) TodayHours(ctx context.Context) (decimal.Decimal, error) {
	raw, err := g.run(ctx, "track.today", []string{"track", "today"}, bus.Options{})
	if err != nil {
		return decimal.Zero, err
	}
	return parse.TodayHours(raw)
}

// Mutate executes a state-changing command. Tracking start/stop take
// the priority lane so a click on the timer is not stuck behind a
// queue of background list fetches.
func (g *Gateway) Mutate(ctx context.Context, req domain.MutationRequest) (domain.MutationResult, error) {
	args, err := mutationArgs(req)
	if err != nil {
		return domain.MutationResult{}, err
	}

	opts := bus.Options{Priority: req.Entity == domain.EntityTracking}
	name := string(req.Entity) + "." + string(req.Op)
	raw, err := g.run(ctx, name, args, opts)
	if err != nil {
		return domain.MutationResult{}, err
	}
	return domain.MutationResult{Message: firstLine(raw)}, nil
}

// mutationArgs maps a MutationRequest onto the tool's argument
// conventions. Callers that pass an unknown entity or operation fail
// locally with a validation error; nothing is sent to the tool.
func mutationArgs(req domain.MutationRequest) ([]string, error) {
	if !req.Entity.Valid() || req.Entity == domain.EntityDashboard {
		return nil, toolerr.New(toolerr.KindValidation, "mutate", "entity cannot be mutated: "+string(req.Entity))
	}

	if req.Entity == domain.EntityTracking {
		switch req.Op {
		case domain.OpStartTracking:
			args := []string{"track", "start"}
			if project := req.Params["project"]; project != "" {
				args = append(args, project)
			}
			if client := req.Params["client"]; client != "" {
				args = append(args, "--client", client)
			}
			return args, nil
		case domain.OpStopTracking:
			return []string{"track", "stop"}, nil
		case domain.OpDelete:
			if req.ID == 0 {
				return nil, toolerr.New(toolerr.KindValidation, "mutate", "delete requires a record id")
			}
			return []string{"track", "delete", "--id", strconv.FormatInt(req.ID, 10), "--yes"}, nil
		default:
			return nil, toolerr.New(toolerr.KindValidation, "mutate", "unsupported tracking operation: "+string(req.Op))
		}
	}

	entity := string(req.Entity)
	var verb string
	switch req.Op {
	case domain.OpCreate:
		verb = "create"
	case domain.OpUpdate:
		verb = "update"
	case domain.OpDelete:
		verb = "delete"
	case domain.OpMarkPaid:
		if req.Entity != domain.EntityInvoice {
			return nil, toolerr.New(toolerr.KindValidation, "mutate", "mark_paid applies to invoices only")
		}
		verb = "mark-paid"
	case domain.OpSend:
		if req.Entity != domain.EntityInvoice {
			return nil, toolerr.New(toolerr.KindValidation, "mutate", "send applies to invoices only")
		}
		verb = "send"
	default:
		return nil, toolerr.New(toolerr.KindValidation, "mutate", "unknown operation: "+string(req.Op))
	}

	args := []string{entity, verb}
	needsID := req.Op != domain.OpCreate
	if needsID {
		if req.ID == 0 {
			return nil, toolerr.New(toolerr.KindValidation, "mutate", string(req.Op)+" requires a record id")
		}
		args = append(args, "--id", strconv.FormatInt(req.ID, 10))
	}
	if req.Op == domain.OpDelete {
		args = append(args, "--yes")
	}

	// Sorted for a deterministic argv; the tool does not care.
	keys := make([]string, 0, len(req.Params))
	for key := range req.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, "--"+key, req.Params[key])
	}
	return args, nil
}

func firstLine(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.IndexByte(raw, '\n'); idx >= 0 {
		return strings.TrimSpace(raw[:idx])
	}
	return raw
}
