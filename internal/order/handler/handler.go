package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/order"
	"github.com/fekuna/omnipos-admin-service/internal/order/dto"
	"github.com/fekuna/omnipos-admin-service/internal/order/export"
	"github.com/fekuna/omnipos-admin-service/pkg/httputil"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
	now    func() time.Time
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log, now: time.Now}
}

func (h *OrderHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Put("/{id}/payment-status", h.UpdatePaymentStatus)
}

func (h *OrderHandler) filters(r *http.Request) (*dto.OrderFilters, error) {
	q := r.URL.Query()
	f := &dto.OrderFilters{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		UserID:        q.Get("user_id"),
		Search:        strings.TrimSpace(q.Get("search")),
		SortBy:        q.Get("sort_by"),
		SortOrder:     q.Get("sort_order"),
		Page:          httputil.IntQuery(r, "page", 1, 1, 100000),
		PageSize:      httputil.IntQuery(r, "page_size", 20, 1, 200),
	}
	for key, dst := range map[string]**time.Time{"from": &f.DateFrom, "to": &f.DateTo} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a date like 2006-01-02", key)
		}
		if key == "to" {
			t = t.AddDate(0, 0, 1)
		}
		*dst = &t
	}
	return f, nil
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := h.filters(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	orders, total, err := h.uc.ListOrders(r.Context(), filters)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.ListResponse[model.Order]{
		Data: orders, Total: total, Page: filters.Page, PageSize: filters.PageSize,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateStatusInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	input.ID = chi.URLParam(r, "id")

	o, err := h.uc.UpdateOrderStatus(r.Context(), &input)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdatePaymentStatusInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	input.ID = chi.URLParam(r, "id")

	o, err := h.uc.UpdatePaymentStatus(r.Context(), &input)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export streams the file directly; headers are sent before the first
// write, so a failure midway leaves a truncated download and a log line.
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	filters, err := h.filters(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	name := fmt.Sprintf("orders-%s%s", h.now().Format("20060102-150405"), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))

	if err := h.uc.ExportOrders(r.Context(), w, format, filters); err != nil {
		httputil.Error(w, r, h.logger, err)
	}
}
