package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fekuna/omnipos-admin-service/internal/category"
	"github.com/fekuna/omnipos-admin-service/internal/category/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/pkg/httputil"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{uc: uc, logger: log}
}

func (h *CategoryHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/tree", h.Tree)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateCategoryInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	cat, err := h.uc.CreateCategory(r.Context(), &input)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	cat, err := h.uc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.CategoryFilters{
		IsActive: httputil.BoolQuery(r, "is_active"),
		Search:   q.Get("search"),
		Page:     httputil.IntQuery(r, "page", 1, 1, 100000),
		PageSize: httputil.IntQuery(r, "page_size", 0, 0, 500),
	}
	if q.Has("parent_id") {
		parent := q.Get("parent_id")
		filters.ParentID = &parent
	}

	cats, total, err := h.uc.ListCategories(r.Context(), filters)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.ListResponse[model.Category]{
		Data: cats, Total: total, Page: filters.Page, PageSize: filters.PageSize,
	})
}

func (h *CategoryHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.uc.GetCategoryTree(r.Context())
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toTreeNodes(tree))
}

// treeNode always renders children, as [] for leaves.
type treeNode struct {
	*model.Category
	Children []treeNode `json:"children"`
}

func toTreeNodes(cats []*model.Category) []treeNode {
	out := make([]treeNode, 0, len(cats))
	for _, c := range cats {
		out = append(out, treeNode{Category: c, Children: toTreeNodes(c.Children)})
	}
	return out
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateCategoryInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	input.ID = chi.URLParam(r, "id")

	cat, err := h.uc.UpdateCategory(r.Context(), &input)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
