package attendance

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/transport"
)

type ServiceAPI interface {
	CheckIn(ctx context.Context, userID int64, dto CheckInDTO) (*Attendance, error)
	CheckOut(ctx context.Context, userID int64) (*Attendance, error)
	GetTodayAttendance(ctx context.Context, userID int64) (*Attendance, error)
	GetMyAttendance(ctx context.Context, userID int64, month, year *int) ([]*Attendance, Stats, error)
	GetAllAttendance(ctx context.Context, q ListQuery) ([]*Attendance, error)
	UpdateAttendance(ctx context.Context, actor *internal.CurrentUser, id int64, dto UpdateAttendanceDTO) (*Attendance, error)
	DeleteAttendance(ctx context.Context, id int64) error
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

// CheckIn handles POST /attendance/check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	var dto CheckInDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	a, err := h.Service.CheckIn(r.Context(), current.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Checked in successfully", a)
}

// CheckOut handles POST /attendance/check-out
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	a, err := h.Service.CheckOut(r.Context(), current.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Checked out successfully", a)
}

// GetToday handles GET /attendance/today
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	a, err := h.Service.GetTodayAttendance(r.Context(), current.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", a)
}

// GetMine handles GET /attendance/my-attendance
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	month, year, err := h.period(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	records, stats, err := h.Service.GetMyAttendance(r.Context(), current.ID, month, year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, records, len(records), stats)
}

// GetAll handles GET /attendance
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	month, year, err := h.period(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	q := ListQuery{Month: month, Year: year, Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.HandleServiceError(w, internal.NewValidationFieldError("userId", "userId must be a number", internal.ErrCodeValidationFailed))
			return
		}
		q.UserID = &id
	}

	records, err := h.Service.GetAllAttendance(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, records, len(records), nil)
}

// Update handles PUT /attendance/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
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

	var dto UpdateAttendanceDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	a, err := h.Service.UpdateAttendance(r.Context(), current, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Attendance updated successfully", a)
}

// Delete handles DELETE /attendance/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteAttendance(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Attendance record deleted successfully", nil)
}

func (h *Handler) period(r *http.Request) (*int, *int, error) {
	month, err := h.QueryInt(r, "month")
	if err != nil {
		return nil, nil, err
	}
	year, err := h.QueryInt(r, "year")
	if err != nil {
		return nil, nil, err
	}
	return month, year, nil
}
