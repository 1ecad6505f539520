package leave

import (
	"context"
	"net/http"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/transport"
)

type ServiceAPI interface {
	ApplyLeave(ctx context.Context, userID int64, dto ApplyLeaveDTO) (*Leave, error)
	GetMyLeaves(ctx context.Context, userID int64) ([]*Leave, error)
	GetAllLeaves(ctx context.Context, status string) ([]*Leave, error)
	UpdateLeaveStatus(ctx context.Context, actor *internal.CurrentUser, id int64, dto UpdateStatusDTO) (*Leave, error)
	DeleteLeave(ctx context.Context, actor *internal.CurrentUser, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

// Apply handles POST /leaves
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	var dto ApplyLeaveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	l, err := h.Service.ApplyLeave(r.Context(), current.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Leave application submitted successfully", l)
}

// GetMine handles GET /leaves/my-leaves
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	leaves, err := h.Service.GetMyLeaves(r.Context(), current.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, leaves, len(leaves), nil)
}

// GetAll handles GET /leaves
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.Service.GetAllLeaves(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, leaves, len(leaves), nil)
}

// UpdateStatus handles PUT /leaves/{id}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	id, err := h.IDParam(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateStatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	l, err := h.Service.UpdateLeaveStatus(r.Context(), current, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, DecisionMessage(l.Status), l)
}

// Delete handles DELETE /leaves/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	id, err := h.IDParam(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteLeave(r.Context(), current, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Leave application deleted successfully", nil)
}
