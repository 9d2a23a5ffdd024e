// Package http exposes the dashboard dataset over a chi-routed JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "txdash/internal/errors"
	"txdash/internal/exporter"
	"txdash/internal/services"
	"txdash/pkg/contracts/domain"
)

// DashboardReader is the service surface the handler depends on.
type DashboardReader interface {
	Dashboard(ctx context.Context, clients []string, from, to domain.Day) (services.DashboardView, error)
	Clients(ctx context.Context) ([]string, domain.Day, domain.Day, error)
	Reload(ctx context.Context) error
}

// DashboardHandler serves dashboard queries, client listings, reloads and
// file exports.
type DashboardHandler struct {
	service  DashboardReader
	logger   *slog.Logger
	validate *validator.Validate
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(service DashboardReader, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:  service,
		logger:   logger.With(slog.String("handler", "dashboard")),
		validate: validator.New(),
	}
}

// Routes returns the chi router for the dashboard API.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetDashboard)
	r.Get("/clients", h.GetClients)
	r.Post("/reload", h.PostReload)
	r.Get("/export", h.GetExport)
	return r
}

// dashboardQuery carries the parsed and validated query parameters.
type dashboardQuery struct {
	Clients []string `validate:"required,min=1,dive,required"`
	From    string   `validate:"omitempty,datetime=2006-01-02"`
	To      string   `validate:"omitempty,datetime=2006-01-02"`
}

// parseQuery reads client/from/to parameters. Clients may repeat or be
// comma-separated; both forms combine.
func (h *DashboardHandler) parseQuery(r *http.Request) (dashboardQuery, *apierrors.APIError) {
	q := r.URL.Query()

	var query dashboardQuery
	for _, raw := range q["client"] {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				query.Clients = append(query.Clients, c)
			}
		}
	}
	query.From = strings.TrimSpace(q.Get("from"))
	query.To = strings.TrimSpace(q.Get("to"))

	if err := h.validate.Struct(query); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			if field == "clients" {
				return query, apierrors.ErrValidation("client", "at least one client must be selected")
			}
			return query, apierrors.ErrValidation(field, fmt.Sprintf("must be a %s date", domain.DayFormat))
		}
		return query, apierrors.InvalidRequestWithError(err)
	}
	return query, nil
}

// dashboardResponse is the JSON payload for GET /.
type dashboardResponse struct {
	Records  []domain.TransactionRecord `json:"records"`
	Summary  domain.Summary             `json:"summary"`
	Failures []domain.FailureNotice     `json:"failures,omitempty"`
	LoadedAt time.Time                  `json:"loaded_at"`
}

func (dashboardResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// GetDashboard returns the filtered dataset with its summary.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	query, apiErr := h.parseQuery(r)
	if apiErr != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apiErr))
		return
	}

	view, err := h.service.Dashboard(r.Context(), query.Clients,
		domain.ParseDay(query.From), domain.ParseDay(query.To))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	records := view.Dataset.Records
	if records == nil {
		records = []domain.TransactionRecord{}
	}
	render.Render(w, r, dashboardResponse{
		Records:  records,
		Summary:  view.Summary,
		Failures: view.Failures,
		LoadedAt: view.LoadedAt,
	})
}

// clientsResponse is the JSON payload for GET /clients.
type clientsResponse struct {
	Clients  []string   `json:"clients"`
	DateFrom domain.Day `json:"date_from"`
	DateTo   domain.Day `json:"date_to"`
}

func (clientsResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// GetClients returns the distinct clients and the dataset's date bounds.
func (h *DashboardHandler) GetClients(w http.ResponseWriter, r *http.Request) {
	clients, min, max, err := h.service.Clients(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.Render(w, r, clientsResponse{Clients: clients, DateFrom: min, DateTo: max})
}

// reloadResponse is the JSON payload for POST /reload.
type reloadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (reloadResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// PostReload triggers a fresh load cycle. A reload that finds no data still
// replaces the cache; it reports 404 so callers know the dataset is empty.
func (h *DashboardHandler) PostReload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reload(r.Context()); err != nil {
		if errors.Is(err, services.ErrNoData) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrNoData))
			return
		}
		h.logger.ErrorContext(r.Context(), "reload failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.IngestionError(err)))
		return
	}
	render.Render(w, r, reloadResponse{Success: true, Message: "dataset reloaded"})
}

// GetExport streams the filtered dataset as csv (default) or xlsx.
func (h *DashboardHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	query, apiErr := h.parseQuery(r)
	if apiErr != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apiErr))
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("format", "must be csv or xlsx")))
		return
	}

	view, err := h.service.Dashboard(r.Context(), query.Clients,
		domain.ParseDay(query.From), domain.ParseDay(query.To))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("transactions_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = exporter.WriteXLSX(w, view.Dataset)
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = exporter.WriteCSV(w, view.Dataset)
	}
	if err != nil {
		// Headers are already written; all we can do is log.
		h.logger.ErrorContext(r.Context(), "export write failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}

// renderServiceError maps service errors onto API error responses.
func (h *DashboardHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoData) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrNoData))
		return
	}
	h.logger.ErrorContext(r.Context(), "dashboard request failed", slog.String("error", err.Error()))
	render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
}
