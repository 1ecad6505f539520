package payroll

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/transport"
)

type ServiceAPI interface {
	GetMyPayroll(ctx context.Context, userID int64, month, year *int) ([]*Payroll, error)
	GetAllPayroll(ctx context.Context, q ListQuery) ([]*Payroll, error)
	CreatePayroll(ctx context.Context, dto CreatePayrollDTO) (*Payroll, error)
	UpdatePayroll(ctx context.Context, id int64, dto UpdatePayrollDTO) (*Payroll, error)
	DeletePayroll(ctx context.Context, id int64) error
	GetPayrollSlip(ctx context.Context, actor *internal.CurrentUser, id int64) (*Payroll, error)
	GeneratePayroll(ctx context.Context, dto GenerateDTO) (*GenerateResult, error)
	ExportPayroll(ctx context.Context, w io.Writer, month, year *int) error
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

// GetMine handles GET /payroll/my-payroll
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

	records, err := h.Service.GetMyPayroll(r.Context(), current.ID, month, year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, records, len(records), nil)
}

// GetAll handles GET /payroll
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

	records, err := h.Service.GetAllPayroll(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteList(w, records, len(records), nil)
}

// Create handles POST /payroll
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreatePayrollDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := h.Service.CreatePayroll(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Payroll created successfully", p)
}

// Update handles PUT /payroll/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdatePayrollDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := h.Service.UpdatePayroll(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Payroll updated successfully", p)
}

// Delete handles DELETE /payroll/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeletePayroll(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Payroll record deleted successfully", nil)
}

// GetSlip handles GET /payroll/slip/{id}
func (h *Handler) GetSlip(w http.ResponseWriter, r *http.Request) {
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

	p, err := h.Service.GetPayrollSlip(r.Context(), current, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", p)
}

// Generate handles POST /payroll/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var dto GenerateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.GeneratePayroll(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, fmt.Sprintf("Generated %d payroll records", result.Generated), result)
}

// Export handles GET /payroll/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	month, year, err := h.period(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.Service.ExportPayroll(r.Context(), &buf, month, year); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", RegisterFilename(*month, *year)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("failed to stream payroll register", "error", err)
	}
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
