package investment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cofrinho/cofrinho/internal/rest"
	"github.com/cofrinho/cofrinho/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type InvestmentDTO struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

type InvestmentRequestDTO struct {
	Name   string  `json:"name"`
	Type   Type    `json:"type"`
	Amount float64 `json:"amount"`
}

type SettingsDTO struct {
	CdiRate   float64 `json:"cdiRate"`
	SelicRate float64 `json:"selicRate"`
}

type QuotaSimulationDTO struct {
	Ticker          string  `json:"ticker"`
	QuotaPrice      float64 `json:"quotaPrice"`
	AnnualYield     float64 `json:"annualYield"`
	Quotas          int64   `json:"quotas"`
	Invested        float64 `json:"invested"`
	MonthlyDividend float64 `json:"monthlyDividend"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List investments
// @Tags Investment
// @Produce json
// @Success 200 {array} InvestmentDTO
// @Router /api/investment [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing investments")

	investments, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]InvestmentDTO, 0, len(investments))
	for _, investment := range investments {
		dtos = append(dtos, toDTO(investment))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Record an investment
// @Tags Investment
// @Accept json
// @Produce json
// @Param investment body InvestmentRequestDTO true "Investment"
// @Success 201 {object} InvestmentDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/investment [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	investment, ok := decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), investment)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Edit an investment
// @Tags Investment
// @Accept json
// @Produce json
// @Param id path string true "Investment ID"
// @Param investment body InvestmentRequestDTO true "Investment"
// @Success 200 {object} InvestmentDTO
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/investment/{id} [put]
// @Security BearerAuth
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid investment id", err.Error())
		return
	}
	investment, ok := decode(w, r)
	if !ok {
		return
	}
	investment.Id = id
	updated, err := h.service.Update(r.Context(), investment)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Remove an investment
// @Tags Investment
// @Param id path string true "Investment ID"
// @Success 204
// @Router /api/investment/{id} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid investment id", err.Error())
		return
	}
	if _, err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings godoc
// @Summary Get reference rates
// @Tags Investment
// @Produce json
// @Success 200 {object} SettingsDTO
// @Router /api/investment/settings [get]
// @Security BearerAuth
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, settingsToDTO(settings))
}

// UpdateSettings godoc
// @Summary Save reference rates
// @Tags Investment
// @Accept json
// @Produce json
// @Param settings body SettingsDTO true "Rates in percent"
// @Success 200 {object} SettingsDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid rate"
// @Router /api/investment/settings [put]
// @Security BearerAuth
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	cdi, err := rest.ToDecimal(body.CdiRate)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid CDI rate", err.Error())
		return
	}
	selic, err := rest.ToDecimal(body.SelicRate)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid Selic rate", err.Error())
		return
	}
	stored, err := h.service.UpdateSettings(r.Context(), FinancialSettings{CdiRate: cdi, SelicRate: selic})
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, settingsToDTO(stored))
}

// Simulate godoc
// @Summary Simulate real estate fund quotas
// @Description Whole quotas of each reference fund the budget buys and their monthly dividend
// @Tags Investment
// @Produce json
// @Param budget query number false "Budget (default 1000)"
// @Success 200 {array} QuotaSimulationDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid budget"
// @Router /api/investment/simulation [get]
// @Security BearerAuth
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	budget := decimal.NewFromInt(1000)
	if raw := r.URL.Query().Get("budget"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			budget, err = rest.ToDecimal(value)
		}
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid budget", err.Error())
			return
		}
	}

	simulations, err := SimulateBudget(budget)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]QuotaSimulationDTO, 0, len(simulations))
	for _, s := range simulations {
		dtos = append(dtos, QuotaSimulationDTO{
			Ticker:          s.Fund.Ticker,
			QuotaPrice:      rest.ToFloat(s.Fund.QuotaPrice),
			AnnualYield:     rest.ToFloat(s.Fund.AnnualYield),
			Quotas:          s.Quotas,
			Invested:        rest.ToFloat(s.Invested),
			MonthlyDividend: rest.ToFloat(s.MonthlyDividend),
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func decode(w http.ResponseWriter, r *http.Request) (Investment, bool) {
	var body InvestmentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return Investment{}, false
	}
	amount, err := rest.ToDecimal(body.Amount)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid amount", err.Error())
		return Investment{}, false
	}
	return Investment{Name: body.Name, Type: body.Type, Amount: amount}, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	case errors.Is(err, ErrInvestmentNotFound):
		rest.WriteError(w, http.StatusNotFound, "Investment not found", "")
	case errors.Is(err, ErrEmptyName), errors.Is(err, ErrInvalidType), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidRate):
		rest.WriteError(w, http.StatusBadRequest, "Invalid investment data", err.Error())
	default:
		log.Errorf("investment request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func toDTO(investment Investment) InvestmentDTO {
	return InvestmentDTO{
		Id:        investment.Id.String(),
		Name:      investment.Name,
		Type:      investment.Type,
		Amount:    rest.ToFloat(investment.Amount),
		CreatedAt: investment.CreatedAt,
	}
}

func settingsToDTO(settings FinancialSettings) SettingsDTO {
	return SettingsDTO{
		CdiRate:   rest.ToFloat(settings.CdiRate),
		SelicRate: rest.ToFloat(settings.SelicRate),
	}
}
