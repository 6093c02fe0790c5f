package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/cofrinho/cofrinho/internal/rest"
	"github.com/cofrinho/cofrinho/pkg/user"
	log "github.com/sirupsen/logrus"
)

type SummaryDTO struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Items       ItemsSummaryDTO    `json:"items"`
	Shopping    ShoppingSummaryDTO `json:"shopping"`
	Investments InvestmentsDTO     `json:"investments"`
}

type ItemsSummaryDTO struct {
	Count          int     `json:"count"`
	Completed      int     `json:"completed"`
	TotalValue     float64 `json:"totalValue"`
	TotalSaved     float64 `json:"totalSaved"`
	Remaining      float64 `json:"remaining"`
	GlobalProgress float64 `json:"globalProgress"`
}

type ShoppingSummaryDTO struct {
	Count     int     `json:"count"`
	Total     float64 `json:"total"`
	Purchased float64 `json:"purchased"`
	Pending   float64 `json:"pending"`
}

type InvestmentsDTO struct {
	ByType           []TypeTotalDTO `json:"byType"`
	Total            float64        `json:"total"`
	CdiRate          float64        `json:"cdiRate"`
	SelicRate        float64        `json:"selicRate"`
	YearlyProjection float64        `json:"yearlyProjection"`
}

type TypeTotalDTO struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

type Handler struct {
	service  SummaryService
	renderer *CsvSummaryRenderer
}

func NewHandler(service SummaryService, renderer *CsvSummaryRenderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

// GetSummary godoc
// @Summary Get the savings summary
// @Description Totals and progress over items, shopping list and investments
// @Tags Summary
// @Produce json
// @Produce text/csv
// @Param format query string false "json (default) or csv"
// @Success 200 {object} SummaryDTO
// @Failure 400 {object} rest.ErrorResponse "Unknown format"
// @Router /api/summary [get]
// @Security BearerAuth
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting summary")

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		rest.WriteError(w, http.StatusBadRequest, "Unknown format", format)
		return
	}

	summary, err := h.service.GetSummary(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			rest.WriteError(w, http.StatusForbidden, "User not found", "")
			return
		}
		log.Errorf("failed to build summary: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to build summary", "")
		return
	}

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="summary.csv"`)
		if err := h.renderer.Render(w, summary); err != nil {
			log.Errorf("failed to render summary: %v", err)
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, toDTO(summary))
}

func toDTO(s Summary) SummaryDTO {
	byType := make([]TypeTotalDTO, 0, len(s.InvestmentsByType))
	for _, t := range s.InvestmentsByType {
		byType = append(byType, TypeTotalDTO{Type: string(t.Type), Amount: rest.ToFloat(t.Amount)})
	}
	return SummaryDTO{
		GeneratedAt: s.GeneratedAt,
		Items: ItemsSummaryDTO{
			Count:          s.ItemCount,
			Completed:      s.ItemsCompleted,
			TotalValue:     rest.ToFloat(s.TotalValue),
			TotalSaved:     rest.ToFloat(s.TotalSaved),
			Remaining:      rest.ToFloat(s.TotalRemaining),
			GlobalProgress: rest.ToFloat(s.GlobalProgress.Round(2)),
		},
		Shopping: ShoppingSummaryDTO{
			Count:     s.ShoppingCount,
			Total:     rest.ToFloat(s.ShoppingTotal),
			Purchased: rest.ToFloat(s.ShoppingPurchasedTotal),
			Pending:   rest.ToFloat(s.ShoppingPending()),
		},
		Investments: InvestmentsDTO{
			ByType:           byType,
			Total:            rest.ToFloat(s.InvestmentsTotal),
			CdiRate:          rest.ToFloat(s.Settings.CdiRate),
			SelicRate:        rest.ToFloat(s.Settings.SelicRate),
			YearlyProjection: rest.ToFloat(s.YearlyProjection),
		},
	}
}
