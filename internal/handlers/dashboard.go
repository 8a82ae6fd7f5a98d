package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/otpdash/internal/catalog"
	appErrors "github.com/charlesng35/otpdash/pkg/errors"
	"github.com/charlesng35/otpdash/pkg/logger"
	"github.com/charlesng35/otpdash/pkg/response"
)

const (
	msgInvalidItemsPerPage = "per_page must be one of 5, 10, 20, 50"
	codeSnapshotExpired    = "SNAPSHOT_EXPIRED"
)

// DashboardHandler serves analytics and the paginated product table. The first call of a
// dashboard load fetches the catalog and holds it; later calls name the held snapshot and
// never reach the upstream catalog.
type DashboardHandler struct {
	source    catalog.Source
	snapshots *catalog.SnapshotStore
	log       *zap.Logger
}

func NewDashboardHandler(source catalog.Source, snapshots *catalog.SnapshotStore) (*DashboardHandler, error) {
	if source == nil {
		return nil, errors.New("dashboard handler: catalog source is required")
	}
	if snapshots == nil {
		return nil, errors.New("dashboard handler: snapshot store is required")
	}
	return &DashboardHandler{
		source:    source,
		snapshots: snapshots,
		log:       logger.WithModule("dashboard"),
	}, nil
}

type snapshotPayload struct {
	ID     string    `json:"id"`
	HeldAt time.Time `json:"heldAt"`
}

type paginationPayload struct {
	Page         int                `json:"page"`
	ItemsPerPage int                `json:"itemsPerPage"`
	TotalPages   int                `json:"totalPages"`
	Window       []catalog.PageItem `json:"window"`
	Options      []int              `json:"options"`
}

type filtersPayload struct {
	Query    string `json:"query"`
	Category string `json:"category"`
}

type dashboardPayload struct {
	Snapshot   snapshotPayload   `json:"snapshot"`
	Analytics  catalog.Analytics `json:"analytics"`
	Categories []string          `json:"categories"`
	Items      []catalog.Product `json:"items"`
	Pagination paginationPayload `json:"pagination"`
	Summary    catalog.Summary   `json:"summary"`
	Filters    filtersPayload    `json:"filters"`
}

// GET /api/dashboard/products?snapshot=&q=&category=&per_page=&page=
func (h *DashboardHandler) Products(c *gin.Context) {
	perPage, err := positiveIntQuery(c, "per_page", catalog.DefaultItemsPerPage)
	if err != nil || !catalog.ValidItemsPerPage(perPage) {
		response.Error(c, appErrors.NewBadRequest(msgInvalidItemsPerPage))
		return
	}
	page, err := positiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}

	held, ok := h.heldSnapshot(c)
	if !ok {
		return
	}

	view := catalog.NewView(held.Snapshot.Products)
	if err := view.SetItemsPerPage(perPage); err != nil {
		response.Error(c, appErrors.NewBadRequest(msgInvalidItemsPerPage))
		return
	}
	view.SetQuery(strings.TrimSpace(c.Query("q")))
	view.SetCategory(strings.TrimSpace(c.Query("category")))
	view.SetPage(page)

	response.Success(c, http.StatusOK, dashboardPayload{
		Snapshot:   snapshotPayload{ID: held.ID, HeldAt: held.HeldAt},
		Analytics:  held.Analytics,
		Categories: held.Categories,
		Items:      view.Rows(),
		Pagination: paginationPayload{
			Page:         view.CurrentPage(),
			ItemsPerPage: view.ItemsPerPage(),
			TotalPages:   view.TotalPages(),
			Window:       view.PageWindow(),
			Options:      catalog.ItemsPerPageOptions,
		},
		Summary: view.Summary(),
		Filters: filtersPayload{
			Query:    view.Query(),
			Category: view.Category(),
		},
	})
}

// heldSnapshot resolves the snapshot named by the request, or fetches and holds a new one
// when none is named. It writes the error response itself and reports false on failure.
func (h *DashboardHandler) heldSnapshot(c *gin.Context) (*catalog.HeldSnapshot, bool) {
	owner := sessionOwner(c)

	if id := strings.TrimSpace(c.Query("snapshot")); id != "" {
		held, ok := h.snapshots.Lookup(owner, id)
		if !ok {
			response.Error(c, appErrors.New(codeSnapshotExpired, "Snapshot expired, reload the dashboard", http.StatusGone))
			return nil, false
		}
		return held, true
	}

	snapshot, err := h.source.Fetch(requestContext(c))
	if err != nil {
		_ = c.Error(err)
		h.log.Warn("catalog fetch failed", zap.Error(err))
		response.Error(c, appErrors.NewBadGateway("Failed to load products", err))
		return nil, false
	}
	return h.snapshots.Hold(owner, snapshot), true
}
