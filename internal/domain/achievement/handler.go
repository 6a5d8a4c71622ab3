package achievement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wastewise/wastewise-api/internal/domain/ledger"
	"github.com/wastewise/wastewise-api/internal/pkg/response"
	"github.com/wastewise/wastewise-api/internal/pkg/validator"
	"github.com/wastewise/wastewise-api/internal/pkg/walletaddr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListForWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	views, err := h.svc.ListForWallet(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, views)
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid achievement id")
		return
	}

	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	wallet, err := walletaddr.Normalize(req.Wallet)
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	result, err := h.svc.Claim(r.Context(), wallet, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "achievement not found")
		case errors.Is(err, ErrInactive):
			response.NotFound(w, "achievement not found")
		case errors.Is(err, ErrNotCompleted):
			response.Conflict(w, "achievement requirements are not met yet")
		case errors.Is(err, ErrAlreadyClaimed):
			response.Conflict(w, "achievement already claimed")
		case errors.Is(err, ErrClaimCapReached):
			response.Conflict(w, "achievement claim limit reached")
		case errors.Is(err, ErrOutsideValidityWindow):
			response.Conflict(w, "achievement cannot be claimed outside its validity window")
		case errors.Is(err, ledger.ErrReferenceConflict):
			response.Conflict(w, "reward already recorded with a different amount")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, result)
}

func fromCreateRequest(req CreateRequest) *Achievement {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &Achievement{
		Code:         req.Code,
		Title:        req.Title,
		Description:  req.Description,
		Category:     Category(req.Category),
		Tier:         req.Tier,
		Icon:         req.Icon,
		RewardScore:  req.RewardScore,
		SortOrder:    req.SortOrder,
		MaxClaims:    req.MaxClaims,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
		Requirements: req.Requirements,
		IsActive:     active,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	a := fromCreateRequest(req)

	if err := h.svc.Create(r.Context(), a); err != nil {
		switch {
		case errors.Is(err, ErrCodeExists):
			response.Conflict(w, "achievement code already exists")
		case errors.Is(err, ErrInvalidRequirements):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, a)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid achievement id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	a := &Achievement{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Category:     Category(req.Category),
		Tier:         req.Tier,
		SortOrder:    req.SortOrder,
		Icon:         req.Icon,
		RewardScore:  req.RewardScore,
		MaxClaims:    req.MaxClaims,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
		Requirements: req.Requirements,
		IsActive:     req.IsActive,
	}

	if err := h.svc.Update(r.Context(), a); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "achievement not found")
		case errors.Is(err, ErrInvalidRequirements):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, a)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid achievement id")
		return
	}

	if err := h.svc.SetActive(r.Context(), id, false); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "achievement not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

func (h *Handler) ForceProgress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid achievement id")
		return
	}

	var req ForceProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	wallet, err := walletaddr.Normalize(req.Wallet)
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	if err := h.svc.ForceProgress(r.Context(), wallet, id, req.Percent, req.ForceComplete); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "achievement not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

func (h *Handler) BatchCreate(w http.ResponseWriter, r *http.Request) {
	var req BatchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	achievements := make([]Achievement, 0, len(req.Achievements))
	for _, item := range req.Achievements {
		achievements = append(achievements, *fromCreateRequest(item))
	}

	result, err := h.svc.BatchCreate(r.Context(), achievements)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, result)
}

func (h *Handler) WalletStats(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	stats, err := h.svc.StatsForWallet(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := CatalogFilter{
		Category:   Category(q.Get("category")),
		Search:     q.Get("search"),
		ActiveOnly: true,
	}
	if v := q.Get("tier"); v != "" {
		tier, err := strconv.Atoi(v)
		if err != nil || tier < 1 || tier > 5 {
			response.BadRequest(w, "invalid tier")
			return
		}
		f.Tier = tier
	}
	if v := q.Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}

	items, err := h.svc.Search(r.Context(), f)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, items)
}

func (h *Handler) Routes(adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Catalog)
	r.Get("/wallet/{wallet}", h.ListForWallet)
	r.Get("/wallet/{wallet}/stats", h.WalletStats)
	r.Post("/{id}/claim", h.Claim)

	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/", h.Create)
		r.Post("/batch", h.BatchCreate)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Deactivate)
		r.Post("/{id}/progress", h.ForceProgress)
		r.Get("/stats", h.Stats)
	})
	return r
}
