package ranking

import (
	"log/slog"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/rbac"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes the ranking endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers the routes under /intelligence.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ModuleIntelligence, rbac.ActionView)).Get("/jobs/{jobID}/ranking", h.show)
	r.With(h.rbac.Require(rbac.ModuleCandidates, rbac.ActionExport)).Get("/jobs/{jobID}/ranking.xlsx", h.export)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Rank(r.Context(), chi.URLParam(r, "jobID"), WeightsFromQuery(r))
	if err != nil {
		h.logger.Error("rank candidates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	result, err := h.service.Rank(r.Context(), jobID, WeightsFromQuery(r))
	if err != nil {
		h.logger.Error("rank candidates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	doc, err := Workbook(result, time.Now())
	if err != nil {
		h.logger.Error("render ranking workbook", slog.String("job_id", jobID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachmentDisposition(jobID))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func attachmentDisposition(jobID string) string {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": "ranking-" + jobID + ".xlsx"})
	if v == "" {
		return `attachment; filename="ranking.xlsx"`
	}
	return v
}

var weightKeys = []string{"skills", "salary", "experience", "availability"}

// WeightsFromQuery reads slider weights from the query string. Without any
// weight key the defaults apply. Once one key is present the sliders are
// taken as given: absent or malformed keys read as 0 and negative values
// become 0.
func WeightsFromQuery(r *http.Request) Weights {
	q := r.URL.Query()
	if !slices.ContainsFunc(weightKeys, q.Has) {
		return DefaultWeights()
	}
	read := func(key string) float64 {
		v, err := strconv.ParseFloat(q.Get(key), 64)
		if err != nil {
			return 0
		}
		return v
	}
	w := Weights{
		Skills:       read("skills"),
		Salary:       read("salary"),
		Experience:   read("experience"),
		Availability: read("availability"),
	}
	return w.sanitized()
}
