package item

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cofrinho/cofrinho/internal/rest"
	"github.com/cofrinho/cofrinho/pkg/storage"
	"github.com/cofrinho/cofrinho/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ItemDTO struct {
	Id                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Price              float64   `json:"price"`
	Quantity           int       `json:"quantity"`
	AmountSaved        float64   `json:"amountSaved"`
	ImageUrl           string    `json:"imageUrl"`
	PurchaseLinks      []string  `json:"purchaseLinks"`
	TotalPrice         float64   `json:"totalPrice"`
	ProgressPercentage float64   `json:"progressPercentage"`
	DisplayPercentage  float64   `json:"displayPercentage"`
	Remaining          float64   `json:"remaining"`
	GoalReached        bool      `json:"goalReached"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type ItemRequestDTO struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Quantity      int      `json:"quantity"`
	AmountSaved   float64  `json:"amountSaved"`
	ImageUrl      string   `json:"imageUrl"`
	PurchaseLinks []string `json:"purchaseLinks"`
}

type EntryDTO struct {
	Id          string    `json:"id"`
	ItemId      string    `json:"itemId"`
	Amount      float64   `json:"amount"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type EntryRequestDTO struct {
	Amount      float64 `json:"amount"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
}

type EntryResultDTO struct {
	Item  ItemDTO  `json:"item"`
	Entry EntryDTO `json:"entry"`
}

type QuantityDTO struct {
	Quantity int `json:"quantity"`
}

type ImageDTO struct {
	Url string `json:"url"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List savings items
// @Description Items of the current user, newest first, with derived progress
// @Tags Item
// @Produce json
// @Success 200 {array} ItemDTO
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/item [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing items")

	items, err := h.service.ListItems(r.Context())
	if err != nil {
		writeItemError(w, err)
		return
	}
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, itemToDTO(item))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a savings item
// @Tags Item
// @Produce json
// @Param itemId path string true "Item ID"
// @Success 200 {object} ItemDTO
// @Failure 404 {object} rest.ErrorResponse "Item not found"
// @Router /api/item/{itemId} [get]
// @Security BearerAuth
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIdFrom(w, r)
	if !ok {
		return
	}
	log.Debugf("Getting item %s", id)

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		writeItemError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, itemToDTO(item))
}

// Create godoc
// @Summary Create a savings item
// @Tags Item
// @Accept json
// @Produce json
// @Param item body ItemRequestDTO true "Item"
// @Success 201 {object} ItemDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/item [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating item")

	item, ok := decodeItem(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateItem(r.Context(), item)
	if err != nil {
		writeItemError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, itemToDTO(created))
}

// Update godoc
// @Summary Update a savings item
// @Description Replaces every editable field of the item
// @Tags Item
// @Accept json
// @Produce json
// @Param itemId path string true "Item ID"
// @Param item body ItemRequestDTO true "Item"
// @Success 200 {object} ItemDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {object} rest.ErrorResponse "Item not found"
// @Router /api/item/{itemId} [put]
// @Security BearerAuth
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIdFrom(w, r)
	if !ok {
		return
	}
	log.Debugf("Updating item %s", id)

	item, ok := decodeItem(w, r)
	if !ok {
		return
	}
	item.Id = id
	updated, err := h.service.UpdateItem(r.Context(), item)
	if err != nil {
		writeItemError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, itemToDTO(updated))
}

// Delete godoc
// @Summary Delete a savings item
// @Description Deleting an unknown item succeeds without effect
// @Tags Item
// @Param itemId path string true "Item ID"
// @Success 204
// @Router /api/item/{itemId} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIdFrom(w, r)
	if !ok {
		return
	}
	log.Debugf("Deleting item %s", id)

	if _, err := h.service.DeleteItem(r.Context(), id); err != nil {
		writeItemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetQuantity godoc
// @Summary Change item quantity
// @Tags Item
// @Accept json
// @Produce json
// @Param itemId path string true "Item ID"
// @Param quantity body QuantityDTO true "Quantity"
// @Success 200 {object} ItemDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid quantity"
// @Failure 404 {object} rest.ErrorResponse "Item not found"
// @Router /api/item/{itemId}/quantity [put]
// @Security BearerAuth
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIdFrom(w, r)
	if !ok {
		return
	}

	var body QuantityDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	log.Debugf("Setting quantity of item %s to %d", id, body.Quantity)

	updated, err := h.service.SetQuantity(r.Context(), id, body.Quantity)
	if err != nil {
		writeItemError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, itemToDTO(updated))
}

// AddEntry godoc
// @Summary Add a contribution
// @Description Records an entry and adds its amount to the item's amount saved
// @Tags Item
// @Accept json
// @Produce json
// @Param itemId path string true "Item ID"
// @Param entry body EntryRequestDTO true "Entry"
// @Success 201 {object} EntryResultDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid amount"
// @Failure 404 {object} rest.ErrorResponse "Item not found"
// @Router /api/item/{itemId}/entry [post]
// @Security BearerAuth
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIdFrom(w, r)
	if !ok {
		return
	}

	var body EntryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	amount, err := rest.ToDecimal(body.Amount)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid amount", err.Error())
		return
	}
	log.Debugf("Adding entry of %s to item %s", amount, id)

	updated, entry, err := h.service.AddEntry(r.Context(), id, amount, body.Quantity, body.Description)
	if err != nil {
		writeItemError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, EntryResultDTO{
		Item:  itemToDTO(updated),
		Entry: entryToDTO(entry),
	})
}

// ListEntries godoc
// @Summary List contributions of an item
// @Tags Item
// @Produce json
// @Param itemId path string true "Item ID"
// @Success 200 {array} EntryDTO
// @Router /api/item/{itemId}/entry [get]
// @Security BearerAuth
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIdFrom(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListEntries(r.Context(), id)
	if err != nil {
		writeItemError(w, err)
		return
	}
	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, entryToDTO(entry))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Recalculate godoc
// @Summary Rebuild amount saved
// @Description Sets amount saved to the sum of the item's entries
// @Tags Item
// @Produce json
// @Param itemId path string true "Item ID"
// @Success 200 {object} ItemDTO
// @Failure 404 {object} rest.ErrorResponse "Item not found"
// @Router /api/item/{itemId}/recalculate [post]
// @Security BearerAuth
func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIdFrom(w, r)
	if !ok {
		return
	}
	log.Debugf("Recalculating item %s", id)

	updated, err := h.service.RecalculateAmountSaved(r.Context(), id)
	if err != nil {
		writeItemError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, itemToDTO(updated))
}

// UploadImage godoc
// @Summary Upload an item image
// @Description Stores an image (max 5 MB) and returns its public URL
// @Tags Item
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image"
// @Success 201 {object} ImageDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid file"
// @Failure 413 {object} rest.ErrorResponse "File too large"
// @Router /api/item/image [post]
// @Security BearerAuth
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	log.Debug("Uploading item image")

	upload, err := storage.ReadImageUpload(w, r, "image")
	if err != nil {
		rest.WriteUploadError(w, err)
		return
	}
	url, err := h.service.UploadImage(r.Context(), upload)
	if err != nil {
		writeItemError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ImageDTO{Url: url})
}

func itemIdFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["itemId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid item id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func decodeItem(w http.ResponseWriter, r *http.Request) (Item, bool) {
	var body ItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return Item{}, false
	}
	price, err := rest.ToDecimal(body.Price)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid price", err.Error())
		return Item{}, false
	}
	saved, err := rest.ToDecimal(body.AmountSaved)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid amount saved", err.Error())
		return Item{}, false
	}
	return Item{
		Name:          body.Name,
		Description:   body.Description,
		Price:         price,
		Quantity:      body.Quantity,
		AmountSaved:   saved,
		ImageUrl:      body.ImageUrl,
		PurchaseLinks: body.PurchaseLinks,
	}, true
}

func writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	case errors.Is(err, ErrItemNotFound):
		rest.WriteError(w, http.StatusNotFound, "Item not found", "")
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidSaved),
		errors.Is(err, ErrSavedTooLarge),
		errors.Is(err, ErrEmptyName):
		rest.WriteError(w, http.StatusBadRequest, "Invalid item data", err.Error())
	default:
		log.Errorf("item request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func itemToDTO(item Item) ItemDTO {
	links := item.PurchaseLinks
	if links == nil {
		links = []string{}
	}
	return ItemDTO{
		Id:                 item.Id.String(),
		Name:               item.Name,
		Description:        item.Description,
		Price:              rest.ToFloat(item.Price),
		Quantity:           item.Quantity,
		AmountSaved:        rest.ToFloat(item.AmountSaved),
		ImageUrl:           item.ImageUrl,
		PurchaseLinks:      links,
		TotalPrice:         rest.ToFloat(item.TotalPrice()),
		ProgressPercentage: rest.ToFloat(item.ProgressPercentage()),
		DisplayPercentage:  rest.ToFloat(item.DisplayPercentage()),
		Remaining:          rest.ToFloat(item.Remaining()),
		GoalReached:        item.GoalReached(),
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
}

func entryToDTO(entry ItemEntry) EntryDTO {
	return EntryDTO{
		Id:          entry.Id.String(),
		ItemId:      entry.ItemId.String(),
		Amount:      rest.ToFloat(entry.Amount),
		Quantity:    entry.Quantity,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt,
	}
}
