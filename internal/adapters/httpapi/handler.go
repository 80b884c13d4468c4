package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
	"github.com/atvirokodosprendimai/regintake/internal/core/usecase"
	"github.com/atvirokodosprendimai/regintake/internal/observability/metrics"
)

const (
	maxFormBodySize = 1 << 20
	errorKindHeader = "X-Error-Kind"
	resultAccepted  = "accepted"
)

type Config struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Limiter throttles /register per client; nil disables throttling.
	Limiter *RateLimiter
	Logger  *slog.Logger
}

type Handler struct {
	registrations *usecase.RegistrationService
	metrics       *metrics.Metrics
	gatherer      prometheus.Gatherer
	limiter       *RateLimiter
	logger        *slog.Logger
}

func NewHandler(registrations *usecase.RegistrationService, cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registrations: registrations,
		metrics:       cfg.Metrics,
		gatherer:      cfg.Gatherer,
		limiter:       cfg.Limiter,
		logger:        logger,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(h.observe)

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(rr chi.Router) {
		if h.limiter != nil {
			rr.Use(h.throttle)
		}
		// Every method is routed here; the service rejects anything but POST.
		rr.HandleFunc("/register", h.register)
	})

	return r
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	form := domain.RawForm{}
	if r.Method == http.MethodPost {
		form = h.readForm(w, r)
	}

	res, err := h.registrations.Handle(r.Context(), form, r.Method)
	if err != nil {
		kind := domain.KindOf(err)
		if kind == "" {
			h.logger.ErrorContext(r.Context(), "registration failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, domain.Result{Success: false, Message: "Error: internal server error"})
			return
		}
		h.observeRegistration(string(kind))
		w.Header().Set(errorKindHeader, string(kind))
		writeJSON(w, http.StatusBadRequest, res)
		return
	}

	h.observeRegistration(resultAccepted)
	writeJSON(w, http.StatusOK, res)
}

// readForm collects the posted fields. A body that cannot be parsed yields
// whatever fields were decoded before the failure, which the required-field
// check then rejects.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) domain.RawForm {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodySize)

	var err error
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormBodySize)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		h.logger.DebugContext(r.Context(), "parse form body", "error", err, "too_large", errors.As(err, &tooLarge))
	}

	form := make(domain.RawForm, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			form[key] = values[len(values)-1]
		}
	}
	return form
}

func (h *Handler) observeRegistration(result string) {
	if h.metrics != nil {
		h.metrics.ObserveRegistration(result)
	}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, openapiSpec())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("encode json response", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		slog.Warn("write response", "error", err)
	}
}

func openapiSpec() map[string]any {
	fields := map[string]any{}
	for _, name := range []string{
		domain.FieldFirstName, domain.FieldLastName, domain.FieldEmail, domain.FieldPhone,
		domain.FieldAddress, domain.FieldCity, domain.FieldState, domain.FieldCountry,
		domain.FieldGender, domain.FieldDOB, domain.FieldMessage, domain.FieldTerms,
	} {
		fields[name] = map[string]any{"type": "string"}
	}
	result := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"success": map[string]any{"type": "boolean"},
			"message": map[string]any{"type": "string"},
		},
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "regintake",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/register": map[string]any{
				"post": map[string]any{
					"summary": "Submit a registration",
					"requestBody": map[string]any{
						"content": map[string]any{
							"application/x-www-form-urlencoded": map[string]any{
								"schema": map[string]any{"type": "object", "properties": fields},
							},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{"description": "Registration accepted", "content": map[string]any{"application/json": map[string]any{"schema": result}}},
						"400": map[string]any{"description": "Registration rejected", "content": map[string]any{"application/json": map[string]any{"schema": result}}},
						"429": map[string]any{"description": "Too many submissions from this client"},
					},
				},
			},
			"/healthz": map[string]any{"get": map[string]any{"summary": "Liveness probe"}},
			"/metrics": map[string]any{"get": map[string]any{"summary": "Prometheus metrics"}},
		},
	}
}
