package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/http/response"
	"github.com/sapphiretrails/backoffice/internal/service"
	"github.com/sapphiretrails/backoffice/pkg/logger"
)

type TourHandler struct {
	Tours service.TourService
	Media service.MediaService
	// Admin guards the write routes.
	Admin     func(http.Handler) http.Handler
	MaxUpload int64
}

func NewTourHandler(tours service.TourService, media service.MediaService, admin func(http.Handler) http.Handler, maxUpload int64) *TourHandler {
	return &TourHandler{Tours: tours, Media: media, Admin: admin, MaxUpload: maxUpload}
}

func (h *TourHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	// {id} is a numeric id or a slug on GET
	r.Get("/{id}", h.get)
	r.Get("/{id}/gallery", h.listGallery)

	r.Group(func(r chi.Router) {
		r.Use(h.Admin)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/images", h.uploadImages)
		r.Post("/{id}/gallery", h.addGalleryImage)
		r.Delete("/{id}/gallery/{imageID}", h.removeGalleryImage)
	})
	return r
}

func (h *TourHandler) list(w http.ResponseWriter, r *http.Request) {
	tours, err := h.Tours.List(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, tours)
}

func (h *TourHandler) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tours.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, t)
}

type createTourRes struct {
	Message string              `json:"message"`
	ID      int64               `json:"id"`
	Slug    string              `json:"slug"`
	Tour    *domain.TourPackage `json:"tour"`
}

func (h *TourHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.TourPackageReq
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.Tours.Create(r.Context(), &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, createTourRes{
		Message: "Tour package created successfully",
		ID:      t.ID,
		Slug:    t.Slug,
		Tour:    t,
	})
}

func (h *TourHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in domain.TourPackageReq
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.Tours.Update(r.Context(), id, &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, t)
}

func (h *TourHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Tours.Delete(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "Tour package deleted successfully"})
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// uploadImages accepts either a multipart form with homepage_image and/or
// hero_image files, or a JSON body with already hosted URLs.
func (h *TourHandler) uploadImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var paths domain.ImagePaths
	if isMultipart(r) {
		if !h.parseForm(w, r) {
			return
		}
		var err error
		if paths.HomepageImageURL, err = h.storeFormFile(r.Context(), r.MultipartForm, "homepage_image"); err != nil {
			h.uploadError(w, r, err)
			return
		}
		if paths.HeroImageURL, err = h.storeFormFile(r.Context(), r.MultipartForm, "hero_image"); err != nil {
			h.uploadError(w, r, err)
			return
		}
	} else if !decodeJSON(w, r, &paths) {
		return
	}

	t, err := h.Tours.UpdateImages(r.Context(), id, paths)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, t)
}

func (h *TourHandler) listGallery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	imgs, err := h.Tours.ListGallery(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, imgs)
}

func (h *TourHandler) addGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var img domain.GalleryImage
	if isMultipart(r) {
		if !h.parseForm(w, r) {
			return
		}
		url, err := h.storeFormFile(r.Context(), r.MultipartForm, "image")
		if err != nil {
			h.uploadError(w, r, err)
			return
		}
		img.ImageURL = url
		img.Alt = r.FormValue("alt")
		img.Hint = r.FormValue("hint")
		if v := r.FormValue("sort_order"); v != "" {
			img.SortOrder, _ = strconv.Atoi(v)
		}
	} else if !decodeJSON(w, r, &img) {
		return
	}

	created, err := h.Tours.AddGalleryImage(r.Context(), id, img)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *TourHandler) removeGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(w, r, "imageID")
	if !ok {
		return
	}

	var url string
	if imgs, err := h.Tours.ListGallery(r.Context(), id); err == nil {
		for _, img := range imgs {
			if img.ID == imageID {
				url = img.ImageURL
			}
		}
	}
	if err := h.Tours.RemoveGalleryImage(r.Context(), id, imageID); err != nil {
		response.FromError(w, r, err)
		return
	}
	if url != "" && h.Media != nil {
		if err := h.Media.Remove(r.Context(), url); err != nil {
			logger.ErrorContext(r.Context(), "Failed to remove gallery file", "error", err, "url", url)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TourHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if h.Media == nil {
		response.WriteError(w, http.StatusNotImplemented, "uploads are disabled", response.CodeInvalidInput)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.WriteError(w, http.StatusRequestEntityTooLarge, "upload too large", response.CodeTooLarge)
			return false
		}
		response.BadRequest(w, "invalid multipart form")
		return false
	}
	return true
}

// storeFormFile processes the file under key. A missing file yields "".
func (h *TourHandler) storeFormFile(ctx context.Context, form *multipart.Form, key string) (string, error) {
	files := form.File[key]
	if len(files) == 0 {
		return "", nil
	}
	f, err := files[0].Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	stored, err := h.Media.SaveImage(ctx, f)
	if err != nil {
		return "", err
	}
	return stored.URL, nil
}

func (h *TourHandler) uploadError(w http.ResponseWriter, r *http.Request, err error) {
	var imgErr *service.ImageError
	if errors.As(err, &imgErr) {
		response.BadRequest(w, imgErr.Error())
		return
	}
	response.FromError(w, r, err)
}
