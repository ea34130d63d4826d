package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/marketplace-api/internal/auth"
	"github.com/redmonkez12/marketplace-api/internal/httputil"
	"github.com/redmonkez12/marketplace-api/internal/imagestore"
	"github.com/redmonkez12/marketplace-api/internal/logging"
)

const (
	msgMissingParams = "Missing parameters"
	msgEmailTaken    = "This email already has an account"
	msgUserModified  = "User modified succesfully !"
	msgUserDeleted   = "User deleted succesfully !"
	avatarField      = "avatar"
)

// Handler contains HTTP handlers for account endpoints
type Handler struct {
	service          *Service
	logger           *logging.Logger
	maxMemory        int64
	enforceOwnership bool
}

func NewHandler(service *Service, logger *logging.Logger, maxMemory int64, enforceOwnership bool) *Handler {
	return &Handler{
		service:          service,
		logger:           logger,
		maxMemory:        maxMemory,
		enforceOwnership: enforceOwnership,
	}
}

// Signup handles account creation
// @Summary      Create an account
// @Description  Register with email, username and password. An optional avatar file is uploaded to the image store.
// @Tags         user
// @Accept       mpfd
// @Produce      json
// @Param        email     formData string true  "Email"
// @Param        username  formData string true  "Username"
// @Param        password  formData string true  "Password"
// @Param        phone     formData string false "Phone"
// @Param        avatar    formData file   false "Avatar"
// @Success      200 {object} SignupResponse
// @Failure      400 {object} httputil.MessageResponse "Missing parameters"
// @Failure      409 {object} httputil.MessageResponse "Email already has an account"
// @Router       /user/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	form, err := httputil.ParseForm(r, h.maxMemory)
	if err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer form.Close()

	in := SignupInput{
		Email:    form.Get("email"),
		Username: form.Get("username"),
		Password: form.Get("password"),
		Phone:    form.Get("phone"),
	}

	avatar, closer, err := imagestore.OpenFormFile(form, avatarField)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	in.Avatar = avatar

	u, err := h.service.Signup(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingParams):
			logger.Warn("signup failed: missing parameters")
			httputil.RespondMessage(w, msgMissingParams, http.StatusBadRequest)
		case errors.Is(err, ErrDuplicateEmail):
			logger.Warn("signup failed: email already exists")
			httputil.RespondMessage(w, msgEmailTaken, http.StatusConflict)
		default:
			logger.Error("signup failed", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	httputil.RespondJSON(w, newSignupResponse(u), http.StatusOK)
}

// Login handles authentication with email and password
// @Summary      Log in
// @Description  Exchange email and password for the account bearer token
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        email     formData string true "Email"
// @Param        password  formData string true "Password"
// @Success      200 {object} LoginResponse
// @Failure      401 {object} httputil.MessageResponse "Unauthorized"
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /user/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	form, err := httputil.ParseForm(r, h.maxMemory)
	if err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer form.Close()

	u, err := h.service.Login(r.Context(), form.Get("email"), form.Get("password"))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondUnauthorized(w)
			return
		}
		logger.Error("login failed", "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	httputil.RespondJSON(w, newLoginResponse(u), http.StatusOK)
}

// Update handles profile modification
// @Summary      Update an account
// @Description  Overwrite username, phone, email and avatar when provided
// @Tags         user
// @Accept       mpfd
// @Produce      json
// @Param        id        path     string true  "User ID"
// @Param        username  formData string false "Username"
// @Param        phone     formData string false "Phone"
// @Param        email     formData string false "Email"
// @Param        avatar    formData file   false "Avatar"
// @Success      200 {string} string "User modified succesfully !"
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.MessageResponse "Forbidden"
// @Failure      409 {object} httputil.MessageResponse "Email already has an account"
// @Router       /user/update/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if !h.canModify(r, id) {
		logger.Warn("user update rejected: not the account owner", "user_id", id)
		httputil.RespondMessage(w, httputil.MsgForbidden, http.StatusForbidden)
		return
	}

	form, err := httputil.ParseForm(r, h.maxMemory)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer form.Close()

	in := UpdateInput{
		Username: form.Optional("username"),
		Phone:    form.Optional("phone"),
		Email:    form.Optional("email"),
	}

	avatar, closer, err := imagestore.OpenFormFile(form, avatarField)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	in.Avatar = avatar

	if err := h.service.Update(r.Context(), id, in); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			httputil.RespondMessage(w, msgEmailTaken, http.StatusConflict)
			return
		}
		logger.Warn("user update failed", "user_id", id, "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	httputil.RespondJSON(w, msgUserModified, http.StatusOK)
}

// Delete handles account removal
// @Summary      Delete an account
// @Tags         user
// @Produce      json
// @Param        id  path  string true "User ID"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.MessageResponse "Forbidden"
// @Router       /user/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if !h.canModify(r, id) {
		logger.Warn("user delete rejected: not the account owner", "user_id", id)
		httputil.RespondMessage(w, httputil.MsgForbidden, http.StatusForbidden)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		logger.Error("user delete failed", "user_id", id, "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	httputil.RespondMessage(w, msgUserDeleted, http.StatusOK)
}

// canModify reports whether the caller may act on account id. Without
// ownership enforcement every caller may.
func (h *Handler) canModify(r *http.Request, id string) bool {
	if !h.enforceOwnership {
		return true
	}
	identity, ok := auth.IdentityFromContext(r.Context())
	return ok && identity.ID == id
}
