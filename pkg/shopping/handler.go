package shopping

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cofrinho/cofrinho/internal/rest"
	"github.com/cofrinho/cofrinho/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ShoppingItemDTO struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Total       float64   `json:"total"`
	IsPurchased bool      `json:"isPurchased"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ShoppingItemRequestDTO struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	IsPurchased bool    `json:"isPurchased"`
}

type PurchasedDTO struct {
	IsPurchased bool `json:"isPurchased"`
}

type PriceDTO struct {
	Price float64 `json:"price"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List shopping list entries
// @Tags Shopping
// @Produce json
// @Success 200 {array} ShoppingItemDTO
// @Router /api/shopping [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing shopping list")

	items, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]ShoppingItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toDTO(item))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Add a shopping list entry
// @Tags Shopping
// @Accept json
// @Produce json
// @Param item body ShoppingItemRequestDTO true "Shopping item"
// @Success 201 {object} ShoppingItemDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/shopping [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	item, ok := decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Edit a shopping list entry
// @Tags Shopping
// @Accept json
// @Produce json
// @Param id path string true "Shopping item ID"
// @Param item body ShoppingItemRequestDTO true "Shopping item"
// @Success 200 {object} ShoppingItemDTO
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/shopping/{id} [put]
// @Security BearerAuth
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idFrom(w, r)
	if !ok {
		return
	}
	item, ok := decode(w, r)
	if !ok {
		return
	}
	item.Id = id
	updated, err := h.service.Update(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// SetPurchased godoc
// @Summary Mark a shopping list entry as bought or not
// @Tags Shopping
// @Accept json
// @Produce json
// @Param id path string true "Shopping item ID"
// @Param purchased body PurchasedDTO true "Purchased flag"
// @Success 200 {object} ShoppingItemDTO
// @Router /api/shopping/{id}/purchased [put]
// @Security BearerAuth
func (h *Handler) SetPurchased(w http.ResponseWriter, r *http.Request) {
	id, ok := idFrom(w, r)
	if !ok {
		return
	}
	var body PurchasedDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	updated, err := h.service.SetPurchased(r.Context(), id, body.IsPurchased)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// SetPrice godoc
// @Summary Change the price of a shopping list entry
// @Tags Shopping
// @Accept json
// @Produce json
// @Param id path string true "Shopping item ID"
// @Param price body PriceDTO true "Price"
// @Success 200 {object} ShoppingItemDTO
// @Router /api/shopping/{id}/price [put]
// @Security BearerAuth
func (h *Handler) SetPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := idFrom(w, r)
	if !ok {
		return
	}
	var body PriceDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	price, err := rest.ToDecimal(body.Price)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid price", err.Error())
		return
	}
	updated, err := h.service.SetPrice(r.Context(), id, price)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Remove a shopping list entry
// @Tags Shopping
// @Param id path string true "Shopping item ID"
// @Success 204
// @Router /api/shopping/{id} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFrom(w, r)
	if !ok {
		return
	}
	if _, err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func idFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid shopping item id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request) (ShoppingItem, bool) {
	var body ShoppingItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return ShoppingItem{}, false
	}
	price, err := rest.ToDecimal(body.Price)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid price", err.Error())
		return ShoppingItem{}, false
	}
	return ShoppingItem{
		Name:        body.Name,
		Quantity:    body.Quantity,
		Price:       price,
		IsPurchased: body.IsPurchased,
	}, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	case errors.Is(err, ErrShoppingItemNotFound):
		rest.WriteError(w, http.StatusNotFound, "Shopping item not found", "")
	case errors.Is(err, ErrEmptyName), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidPrice):
		rest.WriteError(w, http.StatusBadRequest, "Invalid shopping item", err.Error())
	default:
		log.Errorf("shopping request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func toDTO(item ShoppingItem) ShoppingItemDTO {
	return ShoppingItemDTO{
		Id:          item.Id.String(),
		Name:        item.Name,
		Quantity:    item.Quantity,
		Price:       rest.ToFloat(item.Price),
		Total:       rest.ToFloat(item.Total()),
		IsPurchased: item.IsPurchased,
		CreatedAt:   item.CreatedAt,
	}
}
