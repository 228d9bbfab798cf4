package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
	"github.com/Andriiklymiuk/ung-sub008/internal/viewmodel"
)

// ListEntities serves cached records for one entity type. With
// allow_stale=1 a failed fetch falls back to the offline snapshot,
// explicitly labeled with its capture time.
func (s *Server) ListEntities(c *gin.Context) {
	entity := domain.EntityType(c.Param("type"))
	if !entity.Valid() {
		AbortWithError(c, toolerr.New(toolerr.KindValidation, "entities.list", "unknown entity type: "+c.Param("type")))
		return
	}

	opts := domain.ListOptions{
		Status:     c.Query("status"),
		ClientName: c.Query("client"),
		ActiveOnly: c.Query("active") == "true",
	}

	ctx := c.Request.Context()
	data, err := s.list(c, entity, opts)
	if err == nil {
		respond(c, data)
		return
	}

	if c.Query("allow_stale") == "1" && s.snapshots != nil && staleEligible(err) {
		raw, capturedAt, loadErr := s.snapshots.Load(ctx, entity)
		if loadErr == nil {
			s.log.Warn("serving stale snapshot",
				zap.String("entity", string(entity)),
				zap.Time("captured_at", capturedAt),
				zap.Error(err),
			)
			c.JSON(http.StatusOK, gin.H{
				"success":     true,
				"data":        raw,
				"error":       nil,
				"stale":       true,
				"captured_at": capturedAt,
			})
			return
		}
	}
	AbortWithError(c, err)
}

func (s *Server) list(c *gin.Context, entity domain.EntityType, opts domain.ListOptions) (any, error) {
	ctx := c.Request.Context()
	switch entity {
	case domain.EntityInvoice:
		return s.svc.ListInvoices(ctx, opts)
	case domain.EntityClient:
		return s.svc.ListClients(ctx, opts)
	case domain.EntityContract:
		return s.svc.ListContracts(ctx, opts)
	case domain.EntityExpense:
		return s.svc.ListExpenses(ctx, opts)
	case domain.EntityTracking:
		return s.svc.ListSessions(ctx, opts)
	case domain.EntityDashboard:
		return s.svc.Dashboard(ctx)
	default:
		return nil, toolerr.New(toolerr.KindValidation, "entities.list", "unknown entity type: "+string(entity))
	}
}

// staleEligible limits snapshot fallback to failures where the tool is
// unreachable; validation and parse failures surface directly.
func staleEligible(err error) bool {
	switch toolerr.KindOf(err) {
	case toolerr.KindToolNotInstalled, toolerr.KindNetwork, toolerr.KindTimeout, toolerr.KindExecutionFailed:
		return true
	default:
		return false
	}
}

type refreshRequest struct {
	Entity string `json:"entity"`
}

// Refresh drops cached entries so the next read re-fetches. An empty
// entity clears everything.
func (s *Server) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, toolerr.Wrap(toolerr.KindValidation, "refresh", err))
		return
	}

	entity := domain.EntityType(req.Entity)
	if req.Entity != "" && !entity.Valid() {
		AbortWithError(c, toolerr.New(toolerr.KindValidation, "refresh", "unknown entity type: "+req.Entity))
		return
	}

	s.svc.Refresh(entity)
	respond(c, gin.H{"refreshed": true})
}

// View composes the presentation tree for one UI panel from the same
// cached snapshot its leaves come from.
func (s *Server) View(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		node viewmodel.Node
		err  error
	)

	switch c.Param("view") {
	case "invoices":
		var invoices []domain.Invoice
		if invoices, err = s.svc.ListInvoices(ctx, domain.ListOptions{}); err == nil {
			node = viewmodel.InvoicesView(invoices)
		}
	case "contracts":
		var contracts []domain.Contract
		if contracts, err = s.svc.ListContracts(ctx, domain.ListOptions{}); err == nil {
			node = viewmodel.ContractsView(contracts)
		}
	case "expenses":
		var expenses []domain.Expense
		if expenses, err = s.svc.ListExpenses(ctx, domain.ListOptions{}); err == nil {
			node = viewmodel.ExpensesView(expenses)
		}
	case "sessions":
		var sessions []domain.TrackingSession
		if sessions, err = s.svc.ListSessions(ctx, domain.ListOptions{}); err == nil {
			node = viewmodel.SessionsView(sessions)
		}
	case "dashboard":
		var dash domain.DashboardMetrics
		if dash, err = s.svc.Dashboard(ctx); err == nil {
			node = viewmodel.DashboardView(dash, s.monitor.Snapshot())
		}
	default:
		AbortWithError(c, toolerr.New(toolerr.KindValidation, "views", "unknown view: "+c.Param("view")))
		return
	}

	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, node)
}
