package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"webshop/internal/apperr"
)

// multipartOverhead is the slack allowed on top of the file for form fields and boundaries.
const multipartOverhead = 64 << 10

// UploadImage handles POST /api/v1/products/{id}/images
// @Summary      Upload product image
// @Tags         images
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id          path      string  true   "Product ID"
// @Param        file        formData  file    true   "jpeg, png, gif or webp"
// @Param        is_primary  formData  bool    false  "Make this the primary image"
// @Success      201  {object}  models.Image
// @Failure      400  {object}  apperr.Error
// @Router       /api/v1/products/{id}/images [post]
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	maxBytes := h.app.Config.ImageMaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAppError(w, r, h.app, apperr.Validation("file exceeds the maximum allowed size"))
			return
		}
		writeAppError(w, r, h.app, apperr.Wrap(apperr.KindBadRequest, "invalid multipart form", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAppError(w, r, h.app, apperr.Validation("file is required"))
		return
	}
	defer file.Close()

	isPrimary, _ := strconv.ParseBool(r.FormValue("is_primary"))

	image, err := h.Images.Upload(r.Context(), productID, header.Filename, file, header.Size, isPrimary)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	h.app.Logger.Info().
		Str("request_id", getRequestID(r.Context())).
		Str("product_id", productID.String()).
		Str("image_id", image.ID.String()).
		Int64("size", image.SizeBytes).
		Msg("Image uploaded")
	writeCreated(w, h.app, image, "Image uploaded successfully")
}

func (h *Handlers) ListProductImages(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	images, err := h.Images.ListByProduct(r.Context(), productID)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, images, "Images retrieved successfully")
}

func (h *Handlers) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	image, err := h.Images.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, image, "Image retrieved successfully")
}

// GetImageContent streams the stored binary.
func (h *Handlers) GetImageContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	body, image, err := h.Images.Open(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", image.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(image.SizeBytes, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		h.app.Logger.Warn().
			Str("request_id", getRequestID(r.Context())).
			Str("image_id", id.String()).
			Err(err).
			Msg("Image stream interrupted")
	}
}

func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	if err := h.Images.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, nil, "Image deleted successfully")
}
