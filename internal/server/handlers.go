package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fekuna/omnipos-admin-service/internal/dashboard"
	"github.com/fekuna/omnipos-admin-service/internal/importer"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/preference"
	"github.com/fekuna/omnipos-admin-service/pkg/httputil"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

const maxImportBytes = 10 << 20

type importHandler struct {
	importer *importer.Importer
	logger   logger.ZapLogger
}

// Import reads the raw body. The format comes from ?format= or the
// Content-Type header; ?mode= and ?concurrency= override the defaults.
func (h *importHandler) Import(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		format importer.Format
		err    error
	)
	if f := q.Get("format"); f != "" {
		format, err = importer.ParseFormat(f)
	} else {
		format, err = importer.DetectFormat("", r.Header.Get("Content-Type"))
	}
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	mode, err := importer.ParseMode(q.Get("mode"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	opts := importer.Options{
		Mode:        mode,
		Concurrency: httputil.IntQuery(r, "concurrency", 0, 0, 5),
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer body.Close()

	sum, err := h.importer.Import(r.Context(), importer.Kind(chi.URLParam(r, "kind")), body, format, opts)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sum)
}

type preferenceHandler struct {
	store  preference.Store
	logger logger.ZapLogger
}

func (h *preferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	pref, err := h.store.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, pref)
}

func (h *preferenceHandler) Put(w http.ResponseWriter, r *http.Request) {
	var pref model.ViewPreference
	if err := httputil.DecodeJSON(r, &pref); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	saved, err := h.store.Save(r.Context(), chi.URLParam(r, "key"), pref)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, saved)
}

type dashboardHandler struct {
	svc    *dashboard.Service
	logger logger.ZapLogger
}

func (h *dashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sum)
}

func healthz(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(r); err != nil {
				status[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httputil.JSON(w, code, status)
	}
}
