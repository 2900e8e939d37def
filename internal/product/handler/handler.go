package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/product"
	"github.com/fekuna/omnipos-admin-service/internal/product/dto"
	"github.com/fekuna/omnipos-admin-service/pkg/httputil"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

const maxImageBytes = 5 << 20

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: log}
}

func (h *ProductHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/bulk-delete", h.BulkDelete)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/images", h.AddImage)
	r.Delete("/{id}/images/{imageID}", h.RemoveImage)
	r.Put("/{id}/images/{imageID}/primary", h.SetPrimaryImage)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateProductInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	p, err := h.uc.CreateProduct(r.Context(), &input)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.ProductFilters{
		CategoryID:        q.Get("category_id"),
		IsActive:          httputil.BoolQuery(r, "is_active"),
		IsFeatured:        httputil.BoolQuery(r, "is_featured"),
		LowStockThreshold: httputil.IntQuery(r, "low_stock", 0, 0, 1000000),
		SearchQuery:       strings.TrimSpace(q.Get("search")),
		SortBy:            q.Get("sort_by"),
		SortOrder:         q.Get("sort_order"),
		Page:              httputil.IntQuery(r, "page", 1, 1, 100000),
		PageSize:          httputil.IntQuery(r, "page_size", 20, 1, 200),
	}

	products, total, err := h.uc.ListProducts(r.Context(), filters)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.ListResponse[model.Product]{
		Data: products, Total: total, Page: filters.Page, PageSize: filters.PageSize,
	})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateProductInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	input.ID = chi.URLParam(r, "id")

	p, err := h.uc.UpdateProduct(r.Context(), &input)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if len(body.IDs) == 0 {
		httputil.BadRequest(w, "ids must not be empty")
		return
	}
	httputil.JSON(w, http.StatusOK, h.uc.BulkDeleteProducts(r.Context(), body.IDs))
}

// AddImage accepts either a multipart "file" part or a JSON body with
// image_url.
func (h *ProductHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	input := &dto.AddImageInput{ProductID: chi.URLParam(r, "id")}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<20)
		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			httputil.BadRequest(w, fmt.Sprintf("failed to parse form: %v", err))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.BadRequest(w, "file is required")
			return
		}
		defer file.Close()

		mime, err := sniffMIME(file)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		input.FileName = header.Filename
		input.ContentType = mime
		input.Body = file
		input.AltText = r.FormValue("alt_text")
		input.DisplayOrder, _ = strconv.Atoi(r.FormValue("display_order"))
		input.IsPrimary, _ = strconv.ParseBool(r.FormValue("is_primary"))
	} else {
		var body struct {
			ImageURL     string `json:"image_url"`
			AltText      string `json:"alt_text"`
			DisplayOrder int    `json:"display_order"`
			IsPrimary    bool   `json:"is_primary"`
		}
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		input.ImageURL = body.ImageURL
		input.AltText = body.AltText
		input.DisplayOrder = body.DisplayOrder
		input.IsPrimary = body.IsPrimary
	}

	img, err := h.uc.AddImage(r.Context(), input)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, img)
}

func (h *ProductHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.RemoveImage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "imageID")); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) SetPrimaryImage(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.SetPrimaryImage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "imageID")); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sniffMIME reads the first 512 bytes and rewinds, so the content type is
// taken from the bytes rather than the client's header.
func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek reset: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}
