package profile

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/transport"
	"github.com/frahmantamala/dayflow/internal/user"
)

const imageField = "profileImage"

type ServiceAPI interface {
	GetProfile(ctx context.Context, userID int64) (*user.User, error)
	UpdateProfile(ctx context.Context, userID int64, dto UpdateProfileDTO) (*user.User, error)
	UploadPicture(ctx context.Context, userID int64, raw []byte) (string, error)
	DeletePicture(ctx context.Context, userID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	// MaxUploadBytes caps the size of an uploaded picture.
	MaxUploadBytes int64
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &Handler{
		BaseHandler:    base,
		Service:        svc,
		MaxUploadBytes: maxUploadBytes,
	}
}

// Get handles GET /profile
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	u, err := h.Service.GetProfile(r.Context(), current.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", u)
}

// Update handles PUT /profile
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	var dto UpdateProfileDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.UpdateProfile(r.Context(), current.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Profile updated successfully", u)
}

// UploadPicture handles POST /profile/upload
func (h *Handler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	raw, err := h.readImage(w, r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	publicPath, err := h.Service.UploadPicture(r.Context(), current.ID, raw)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Profile picture uploaded successfully", PictureResponse{ProfileImage: publicPath})
}

// DeletePicture handles DELETE /profile/picture
func (h *Handler) DeletePicture(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	if err := h.Service.DeletePicture(r.Context(), current.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Profile picture deleted successfully", nil)
}

func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	// room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrImageTooLarge
		}
		return nil, ErrNoImage
	}

	file, _, err := r.FormFile(imageField)
	if err != nil {
		return nil, ErrNoImage
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, h.MaxUploadBytes+1))
	if err != nil {
		return nil, ErrNoImage.WithCause(err)
	}
	if int64(len(raw)) > h.MaxUploadBytes {
		return nil, ErrImageTooLarge
	}
	return raw, nil
}
