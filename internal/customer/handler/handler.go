package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fekuna/omnipos-admin-service/internal/customer"
	"github.com/fekuna/omnipos-admin-service/internal/customer/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/pkg/httputil"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type CustomerHandler struct {
	uc     customer.UseCase
	logger logger.ZapLogger
}

func NewCustomerHandler(uc customer.UseCase, log logger.ZapLogger) *CustomerHandler {
	return &CustomerHandler{uc: uc, logger: log}
}

func (h *CustomerHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &dto.CustomerFilters{
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Role:     r.URL.Query().Get("role"),
		Page:     httputil.IntQuery(r, "page", 1, 1, 100000),
		PageSize: httputil.IntQuery(r, "page_size", 20, 1, 200),
	}

	customers, total, err := h.uc.ListCustomers(r.Context(), filters)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.ListResponse[model.Customer]{
		Data: customers, Total: total, Page: filters.Page, PageSize: filters.PageSize,
	})
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, c)
}
