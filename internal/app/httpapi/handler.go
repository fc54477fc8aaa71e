// Package httpapi exposes the REST API: resource handlers, per-route
// authorization, and the audit trail of mutating requests.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/hbnb-project/hbnb/internal/app"
	"github.com/hbnb-project/hbnb/internal/app/metrics"
	placesvc "github.com/hbnb-project/hbnb/internal/app/services/places"
	reviewsvc "github.com/hbnb-project/hbnb/internal/app/services/reviews"
	usersvc "github.com/hbnb-project/hbnb/internal/app/services/users"
	apperrors "github.com/hbnb-project/hbnb/internal/errors"
	"github.com/hbnb-project/hbnb/internal/httputil"
	"github.com/hbnb-project/hbnb/internal/logging"
	"github.com/hbnb-project/hbnb/internal/middleware"
)

// Options tunes the handler beyond its service dependencies.
type Options struct {
	// AuditLimit bounds the in-memory audit window. Zero means the default.
	AuditLimit int
	// AuditFile, when set, mirrors audit entries to a JSONL file.
	AuditFile string
}

// Handler bundles HTTP endpoints for the application services.
type Handler struct {
	app    *app.Application
	tokens *middleware.TokenManager
	log    *logging.Logger
	audit  *auditLog
}

// NewHandler returns a router exposing the REST API under /api/v1.
func NewHandler(application *app.Application, tokens *middleware.TokenManager, log *logging.Logger, opts Options) (http.Handler, error) {
	if log == nil {
		log = logging.NewDefault("httpapi")
	}

	sink, err := newFileAuditSink(opts.AuditFile)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		app:    application,
		tokens: tokens,
		log:    log,
		audit:  newAuditLog(opts.AuditLimit, sink),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(h.auditMiddleware)

	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h.me).Methods(http.MethodGet)

	api.HandleFunc("/users", h.createUser).Methods(http.MethodPost)
	api.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.updateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.deleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/amenities", h.createAmenity).Methods(http.MethodPost)
	api.HandleFunc("/amenities", h.listAmenities).Methods(http.MethodGet)
	api.HandleFunc("/amenities/{id}", h.getAmenity).Methods(http.MethodGet)
	api.HandleFunc("/amenities/{id}", h.updateAmenity).Methods(http.MethodPut)
	api.HandleFunc("/amenities/{id}", h.deleteAmenity).Methods(http.MethodDelete)

	api.HandleFunc("/places", h.createPlace).Methods(http.MethodPost)
	api.HandleFunc("/places", h.listPlaces).Methods(http.MethodGet)
	api.HandleFunc("/places/{id}", h.getPlace).Methods(http.MethodGet)
	api.HandleFunc("/places/{id}", h.updatePlace).Methods(http.MethodPut)
	api.HandleFunc("/places/{id}", h.deletePlace).Methods(http.MethodDelete)
	api.HandleFunc("/places/{id}/reviews", h.listPlaceReviews).Methods(http.MethodGet)

	api.HandleFunc("/reviews", h.createReview).Methods(http.MethodPost)
	api.HandleFunc("/reviews", h.listReviews).Methods(http.MethodGet)
	api.HandleFunc("/reviews/{id}", h.getReview).Methods(http.MethodGet)
	api.HandleFunc("/reviews/{id}", h.updateReview).Methods(http.MethodPut)
	api.HandleFunc("/reviews/{id}", h.deleteReview).Methods(http.MethodDelete)

	api.HandleFunc("/admin/audit", h.listAudit).Methods(http.MethodGet)

	return r, nil
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auditMiddleware records every mutating request after it completes.
func (h *Handler) auditMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.audit.add(auditEntry{
			Time:       timeNow(),
			User:       middleware.GetUserID(r.Context()),
			Role:       logging.GetRole(r.Context()),
			Path:       r.URL.Path,
			Method:     r.Method,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// --- auth ---

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}

	u, err := h.app.Users.VerifyPassword(r.Context(), payload.Email, payload.Password)
	if err != nil {
		metrics.RecordLogin(false)
		h.writeError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		metrics.RecordLogin(false)
		h.writeError(w, r, apperrors.Internal("issue token", err))
		return
	}

	metrics.RecordLogin(true)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "Bearer",
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	if callerID == "" {
		httputil.Unauthorized(w, "")
		return
	}
	u, err := h.app.Users.Get(r.Context(), callerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

// --- users ---

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		IsAdmin   bool   `json:"is_admin"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}
	if payload.IsAdmin && !middleware.IsAdmin(r.Context()) {
		h.writeError(w, r, apperrors.Forbidden("only administrators may grant admin"))
		return
	}

	created, err := h.app.Users.Create(r.Context(), usersvc.CreateInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
		IsAdmin:   payload.IsAdmin,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("user", "create")
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.app.Users.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Users.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.requireSelfOrAdmin(w, r, id) {
		return
	}

	var payload struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Password  *string `json:"password"`
		IsAdmin   *bool   `json:"is_admin"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}
	if payload.IsAdmin != nil && !middleware.IsAdmin(r.Context()) {
		h.writeError(w, r, apperrors.Forbidden("only administrators may change admin status"))
		return
	}

	updated, err := h.app.Users.Update(r.Context(), id, usersvc.UpdateInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
		IsAdmin:   payload.IsAdmin,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("user", "update")
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.requireSelfOrAdmin(w, r, id) {
		return
	}
	if err := h.app.Users.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("user", "delete")
	w.WriteHeader(http.StatusNoContent)
}

// --- amenities ---

func (h *Handler) createAmenity(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var payload struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}
	created, err := h.app.Amenities.Create(r.Context(), payload.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("amenity", "create")
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) listAmenities(w http.ResponseWriter, r *http.Request) {
	amenities, err := h.app.Amenities.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, amenities)
}

func (h *Handler) getAmenity(w http.ResponseWriter, r *http.Request) {
	a, err := h.app.Amenities.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) updateAmenity(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var payload struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}
	updated, err := h.app.Amenities.Update(r.Context(), mux.Vars(r)["id"], payload.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("amenity", "update")
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteAmenity(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.app.Amenities.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("amenity", "delete")
	w.WriteHeader(http.StatusNoContent)
}

// --- places ---

func (h *Handler) createPlace(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	if callerID == "" {
		httputil.Unauthorized(w, "")
		return
	}

	var payload struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Price       float64  `json:"price"`
		Latitude    float64  `json:"latitude"`
		Longitude   float64  `json:"longitude"`
		OwnerID     string   `json:"owner_id"`
		Rooms       int      `json:"rooms"`
		Capacity    int      `json:"capacity"`
		Surface     float64  `json:"surface"`
		Photos      []string `json:"photos"`
		Amenities   []string `json:"amenities"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}

	if payload.OwnerID == "" {
		payload.OwnerID = callerID
	}
	if payload.OwnerID != callerID && !middleware.IsAdmin(r.Context()) {
		h.writeError(w, r, apperrors.Forbidden("cannot create a place for another user"))
		return
	}

	created, err := h.app.Places.Create(r.Context(), placesvc.CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
		OwnerID:     payload.OwnerID,
		Rooms:       payload.Rooms,
		Capacity:    payload.Capacity,
		Surface:     payload.Surface,
		Photos:      payload.Photos,
		AmenityIDs:  payload.Amenities,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("place", "create")
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) listPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.app.Places.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, places)
}

func (h *Handler) getPlace(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Places.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) updatePlace(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.requirePlaceOwnerOrAdmin(w, r, id) {
		return
	}

	var payload struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Price       *float64  `json:"price"`
		Latitude    *float64  `json:"latitude"`
		Longitude   *float64  `json:"longitude"`
		Rooms       *int      `json:"rooms"`
		Capacity    *int      `json:"capacity"`
		Surface     *float64  `json:"surface"`
		Photos      *[]string `json:"photos"`
		Amenities   *[]string `json:"amenities"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}

	updated, err := h.app.Places.Update(r.Context(), id, placesvc.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
		Rooms:       payload.Rooms,
		Capacity:    payload.Capacity,
		Surface:     payload.Surface,
		Photos:      payload.Photos,
		AmenityIDs:  payload.Amenities,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("place", "update")
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deletePlace(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.requirePlaceOwnerOrAdmin(w, r, id) {
		return
	}
	if err := h.app.Places.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("place", "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPlaceReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.app.Reviews.ListByPlace(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reviews)
}

// --- reviews ---

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	if callerID == "" {
		httputil.Unauthorized(w, "")
		return
	}

	var payload struct {
		Text    string `json:"text"`
		Rating  int    `json:"rating"`
		PlaceID string `json:"place_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}

	created, err := h.app.Reviews.Create(r.Context(), reviewsvc.CreateInput{
		Text:    payload.Text,
		Rating:  payload.Rating,
		UserID:  callerID,
		PlaceID: payload.PlaceID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("review", "create")
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.app.Reviews.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reviews)
}

func (h *Handler) getReview(w http.ResponseWriter, r *http.Request) {
	rv, err := h.app.Reviews.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rv)
}

func (h *Handler) updateReview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.requireReviewAuthorOrAdmin(w, r, id) {
		return
	}

	var payload struct {
		Text   *string `json:"text"`
		Rating *int    `json:"rating"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}

	updated, err := h.app.Reviews.Update(r.Context(), id, reviewsvc.UpdateInput{
		Text:   payload.Text,
		Rating: payload.Rating,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("review", "update")
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.requireReviewAuthorOrAdmin(w, r, id) {
		return
	}
	if err := h.app.Reviews.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordEntityWrite("review", "delete")
	w.WriteHeader(http.StatusNoContent)
}

// --- admin ---

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	httputil.WriteJSON(w, http.StatusOK, h.audit.listLimit(limit))
}

// --- authorization helpers ---

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if middleware.GetUserID(r.Context()) == "" {
		httputil.Unauthorized(w, "")
		return false
	}
	if !middleware.IsAdmin(r.Context()) {
		h.writeError(w, r, apperrors.Forbidden("admin privileges required"))
		return false
	}
	return true
}

func (h *Handler) requireSelfOrAdmin(w http.ResponseWriter, r *http.Request, userID string) bool {
	callerID := middleware.GetUserID(r.Context())
	if callerID == "" {
		httputil.Unauthorized(w, "")
		return false
	}
	if callerID != userID && !middleware.IsAdmin(r.Context()) {
		h.writeError(w, r, apperrors.Forbidden("unauthorized action"))
		return false
	}
	return true
}

func (h *Handler) requirePlaceOwnerOrAdmin(w http.ResponseWriter, r *http.Request, placeID string) bool {
	callerID := middleware.GetUserID(r.Context())
	if callerID == "" {
		httputil.Unauthorized(w, "")
		return false
	}
	p, err := h.app.Places.Get(r.Context(), placeID)
	if err != nil {
		h.writeError(w, r, err)
		return false
	}
	if p.OwnerID != callerID && !middleware.IsAdmin(r.Context()) {
		h.writeError(w, r, apperrors.Forbidden("unauthorized action"))
		return false
	}
	return true
}

func (h *Handler) requireReviewAuthorOrAdmin(w http.ResponseWriter, r *http.Request, reviewID string) bool {
	callerID := middleware.GetUserID(r.Context())
	if callerID == "" {
		httputil.Unauthorized(w, "")
		return false
	}
	rv, err := h.app.Reviews.Get(r.Context(), reviewID)
	if err != nil {
		h.writeError(w, r, err)
		return false
	}
	if rv.UserID != callerID && !middleware.IsAdmin(r.Context()) {
		h.writeError(w, r, apperrors.Forbidden("unauthorized action"))
		return false
	}
	return true
}

// --- plumbing ---

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if svcErr := apperrors.GetServiceError(err); svcErr != nil {
		if svcErr.HTTPStatus >= 500 {
			h.log.WithContext(r.Context()).WithError(err).Error("request failed")
		}
		httputil.WriteErrorResponse(w, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)
		return
	}
	h.log.WithContext(r.Context()).WithError(err).Error("request failed")
	httputil.WriteErrorResponse(w, http.StatusInternalServerError, string(apperrors.CodeInternal), "internal error", nil)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
