package nft

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wastewise/wastewise-api/internal/middleware"
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

func (h *Handler) Eligible(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	items, err := h.svc.Eligible(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, items)
}

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	var req ReserveRequest
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

	reservation, err := h.svc.Reserve(r.Context(), wallet, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "pool item not found")
		case IsConflict(err):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, reservation)
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
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
			response.NotFound(w, "pool item not found")
		case IsConflict(err):
			response.Conflict(w, err.Error())
		case errors.Is(err, ErrTransferFailed):
			response.BadGateway(w, "on-chain transfer failed, the item is back in the pool")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, result)
}

func (h *Handler) Attempts(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	attempts, err := h.svc.Attempts(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, attempts)
}

func (h *Handler) Owned(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletaddr.Normalize(chi.URLParam(r, "wallet"))
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	items, err := h.svc.Owned(r.Context(), wallet)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, items)
}

func (h *Handler) PoolStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.PoolStats(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	item, err := h.svc.AddItem(r.Context(), addInputFromRequest(req, middleware.GetAdminWallet(r.Context())))
	if err != nil {
		if errors.Is(err, ErrMintFailed) {
			response.BadGateway(w, "minting failed, nothing was added to the pool")
			return
		}
		response.InternalError(w)
		return
	}
	response.Created(w, item)
}

func (h *Handler) BatchAdd(w http.ResponseWriter, r *http.Request) {
	var req BatchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	admin := middleware.GetAdminWallet(r.Context())
	inputs := make([]AddInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, addInputFromRequest(item, admin))
	}

	result, err := h.svc.BatchAdd(r.Context(), inputs)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}

func addInputFromRequest(req AddItemRequest, createdBy string) AddInput {
	return AddInput{
		Name:                    req.Name,
		Description:             req.Description,
		ImageURL:                req.ImageURL,
		Category:                req.Category,
		Rarity:                  req.Rarity,
		RequiredScore:           req.RequiredScore,
		RequiredClassifications: req.RequiredClassifications,
		Attributes:              req.Attributes,
		CreatedBy:               createdBy,
	}
}

func (h *Handler) Attempt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid attempt id")
		return
	}

	attempt, err := h.svc.Attempt(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "claim attempt not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, attempt)
}

func (h *Handler) Routes(adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/eligible/{wallet}", h.Eligible)
	r.Get("/owned/{wallet}", h.Owned)
	r.Get("/attempts/{wallet}", h.Attempts)
	r.Get("/claims/{id}", h.Attempt)
	r.Post("/{id}/reserve", h.Reserve)
	r.Post("/{id}/claim", h.Claim)

	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/", h.AddItem)
		r.Post("/batch", h.BatchAdd)
		r.Get("/stats", h.PoolStats)
	})
	return r
}
