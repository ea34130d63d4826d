package offer

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/marketplace-api/internal/auth"
	"github.com/redmonkez12/marketplace-api/internal/config"
	"github.com/redmonkez12/marketplace-api/internal/httputil"
	"github.com/redmonkez12/marketplace-api/internal/imagestore"
	"github.com/redmonkez12/marketplace-api/internal/logging"
)

const (
	msgOfferModified = "Offer modified succesfully !"
	msgOfferDeleted  = "Offer deleted succesfully !"
	pictureField     = "picture"
)

// Handler contains HTTP handlers for listing endpoints
type Handler struct {
	service   *Service
	search    config.SearchConfig
	maxMemory int64
}

func NewHandler(service *Service, search config.SearchConfig, maxMemory int64) *Handler {
	return &Handler{
		service:   service,
		search:    search,
		maxMemory: maxMemory,
	}
}

// Publish handles offer creation
// @Summary      Publish an offer
// @Description  Create a listing owned by the caller. The picture is uploaded to the image store.
// @Tags         offer
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        title        formData string true  "Title"
// @Param        description  formData string false "Description"
// @Param        price        formData number true  "Price"
// @Param        brand        formData string false "Brand"
// @Param        size         formData string false "Size"
// @Param        condition    formData string false "Condition"
// @Param        color        formData string false "Color"
// @Param        city         formData string false "City"
// @Param        picture      formData file   true  "Picture"
// @Success      200 {object} Offer
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.MessageResponse "Unauthorized"
// @Router       /offer/publish [post]
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondUnauthorized(w)
		return
	}

	form, err := httputil.ParseForm(r, h.maxMemory)
	if err != nil {
		logger.Warn("invalid publish request body", "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer form.Close()

	price, err := ParsePrice(form.Get("price"))
	if err != nil {
		httputil.RespondError(w, ErrInvalidPrice.Error(), http.StatusBadRequest)
		return
	}

	in := PublishInput{
		Title:       form.Get("title"),
		Description: form.Get("description"),
		Price:       price,
		Details:     detailsFromForm(form),
	}

	picture, closer, err := imagestore.OpenFormFile(form, pictureField)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	in.Picture = picture

	o, err := h.service.Publish(r.Context(), identity.ID, in)
	if err != nil {
		logger.Warn("publish failed", "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	httputil.RespondJSON(w, o, http.StatusOK)
}

// Get handles fetching one offer
// @Summary      Get an offer
// @Description  Returns the offer with its owner account, or null when it does not exist
// @Tags         offer
// @Produce      json
// @Param        id  path  string true "Offer ID"
// @Success      200 {object} Offer
// @Failure      400 {object} httputil.MessageResponse
// @Router       /offer/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("get offer failed", "offer_id", id, "error", err.Error())
		httputil.RespondMessage(w, err.Error(), http.StatusBadRequest)
		return
	}

	httputil.RespondJSON(w, o, http.StatusOK)
}

// Update handles offer modification
// @Summary      Update an offer
// @Description  Overwrite the provided fields. Attribute values are replaced in place.
// @Tags         offer
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id           path     string true  "Offer ID"
// @Param        title        formData string false "Title"
// @Param        description  formData string false "Description"
// @Param        price        formData number false "Price"
// @Param        brand        formData string false "Brand"
// @Param        size         formData string false "Size"
// @Param        condition    formData string false "Condition"
// @Param        color        formData string false "Color"
// @Param        city         formData string false "City"
// @Param        picture      formData file   false "Picture"
// @Success      200 {string} string "Offer modified succesfully !"
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.MessageResponse "Unauthorized"
// @Failure      403 {object} httputil.MessageResponse "Forbidden"
// @Router       /offer/update/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondUnauthorized(w)
		return
	}

	form, err := httputil.ParseForm(r, h.maxMemory)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer form.Close()

	in := UpdateInput{
		Title:       form.Optional("title"),
		Description: form.Optional("description"),
		Details:     detailsFromForm(form),
	}
	if raw := form.Optional("price"); raw != nil {
		price, err := ParsePrice(*raw)
		if err != nil {
			httputil.RespondError(w, ErrInvalidPrice.Error(), http.StatusBadRequest)
			return
		}
		in.Price = &price
	}

	picture, closer, err := imagestore.OpenFormFile(form, pictureField)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	in.Picture = picture

	if err := h.service.Update(r.Context(), identity.ID, id, in); err != nil {
		if errors.Is(err, ErrForbidden) {
			logger.Warn("offer update rejected", "offer_id", id, "caller_id", identity.ID)
			httputil.RespondMessage(w, httputil.MsgForbidden, http.StatusForbidden)
			return
		}
		logger.Warn("offer update failed", "offer_id", id, "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	httputil.RespondJSON(w, msgOfferModified, http.StatusOK)
}

// Delete handles offer removal
// @Summary      Delete an offer
// @Description  Purge the offer images, then delete the offer
// @Tags         offer
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string true "Offer ID"
// @Success      200 {string} string "Offer deleted succesfully !"
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.MessageResponse "Unauthorized"
// @Failure      403 {object} httputil.MessageResponse "Forbidden"
// @Router       /offer/delete/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondUnauthorized(w)
		return
	}

	if err := h.service.Delete(r.Context(), identity.ID, id); err != nil {
		if errors.Is(err, ErrForbidden) {
			logger.Warn("offer delete rejected", "offer_id", id, "caller_id", identity.ID)
			httputil.RespondMessage(w, httputil.MsgForbidden, http.StatusForbidden)
			return
		}
		logger.Warn("offer delete failed", "offer_id", id, "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	httputil.RespondJSON(w, msgOfferDeleted, http.StatusOK)
}

// Search handles the filtered, paginated listing
// @Summary      Search offers
// @Tags         offer
// @Produce      json
// @Param        title     query string false "Case-insensitive title fragment"
// @Param        priceMin  query number false "Minimum price"
// @Param        priceMax  query number false "Maximum price"
// @Param        sort      query string false "price-asc or price-desc"
// @Param        page      query int    false "Page, starting at 1"
// @Param        limit     query int    false "Page size"
// @Success      200 {object} SearchResult
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /offers [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params, err := ParseSearchParams(r.URL.Query(), h.search.DefaultLimit, h.search.MaxLimit)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Search(r.Context(), params)
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("offer search failed", "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	httputil.RespondJSON(w, result, http.StatusOK)
}

// detailsFromForm reads the attribute fields. The location comes from
// "city", with "location" accepted as well.
func detailsFromForm(form *httputil.Form) DetailsInput {
	location := form.Optional("city")
	if location == nil {
		location = form.Optional("location")
	}
	return DetailsInput{
		Brand:     form.Optional("brand"),
		Size:      form.Optional("size"),
		Condition: form.Optional("condition"),
		Color:     form.Optional("color"),
		Location:  location,
	}
}
