package handler

import (
	"net/http"

	"github.com/Tantanok221/douren/internal/apperror"
	"github.com/Tantanok221/douren/internal/imagecdn"
	"github.com/Tantanok221/douren/internal/util"
)

// UploadImage forwards a multipart image to the external image host and
// returns the hosted link. The form field must be named "image".
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, r, apperror.Upstream("image host not configured", nil))
		return
	}

	if err := r.ParseMultipartForm(imagecdn.MaxUploadSize); err != nil {
		writeError(w, r, apperror.Validation("request is not valid multipart form data"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, apperror.Validation("image field is required"))
		return
	}
	defer func() { _ = file.Close() }()

	filename, err := util.SanitizeFilename(header.Filename)
	if err != nil {
		writeError(w, r, apperror.Validation("invalid image filename"))
		return
	}

	link, err := h.images.Upload(r.Context(), filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"link": link})
}
