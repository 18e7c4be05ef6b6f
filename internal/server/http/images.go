package http

import (
	"net/http"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

const imageField = "image"

type imageResponse struct {
	Message string        `json:"message,omitempty"`
	Image   *models.Image `json:"image"`
}

type imagesResponse struct {
	Images []*models.Image `json:"images"`
}

func (h *handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	if !isMultipart(r) {
		h.writeError(w, r, common.NewValidationError(imageField, "No file uploaded"))
		return
	}

	form, err := h.readMultipart(w, r, imageField)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if form.file == nil {
		h.writeError(w, r, common.NewValidationError(imageField, "No file uploaded"))
		return
	}

	img, err := h.images.Upload(r.Context(), userID, form.file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, imageResponse{Message: "Image uploaded successfully", Image: img})
}

func (h *handler) listImages(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	list, err := h.images.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, imagesResponse{Images: list})
}

func (h *handler) getImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	img, err := h.images.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, imageResponse{Image: img})
}

func (h *handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	if err := h.images.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Image deleted successfully"})
}
