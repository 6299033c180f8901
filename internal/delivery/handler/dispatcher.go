package handler

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"ads-api/internal/infrastructure/metrics"
	"ads-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMethods is advertised in the Allow header of every 405 answer,
// whatever the endpoint actually binds.
var DefaultMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}

const instanceIDParam = "instanceID"

// Param names a path parameter a bound handler cannot run without.
type Param int

const (
	ParamInstanceID Param = iota + 1
)

func (p Param) String() string {
	switch p {
	case ParamInstanceID:
		return instanceIDParam
	}
	return "unknown"
}

type Params struct {
	InstanceID string
}

func (p Params) has(param Param) bool {
	switch param {
	case ParamInstanceID:
		return p.InstanceID != ""
	}
	return false
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request, params Params)

type binding struct {
	handler  HandlerFunc
	requires []Param
}

// Dispatcher routes the requests of one path pattern to the handler bound to
// their HTTP verb.
type Dispatcher struct {
	pattern  string
	bindings map[string]binding
	metrics  *metrics.HandlerMetrics
	tracer   trace.Tracer
}

func NewDispatcher(pattern string, metrics *metrics.HandlerMetrics) *Dispatcher {
	return &Dispatcher{
		pattern:  pattern,
		bindings: make(map[string]binding),
		metrics:  metrics,
		tracer:   otel.Tracer("ads-api/handler"),
	}
}

func (d *Dispatcher) Bind(method string, h HandlerFunc, requires ...Param) {
	d.bindings[strings.ToUpper(method)] = binding{handler: h, requires: requires}
}

func (d *Dispatcher) Methods() []string {
	methods := make([]string, 0, len(d.bindings))
	for m := range d.bindings {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := strings.ToUpper(r.Method)

	ctx, span := d.tracer.Start(r.Context(), method+" "+d.pattern)
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", d.pattern),
	)

	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	startTime := time.Now()

	defer func() {
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		span.SetAttributes(attribute.Int("http.status_code", code))

		if d.metrics == nil {
			return
		}
		status := statusLabel(code)
		duration := time.Since(startTime).Seconds()
		d.metrics.RequestCount.WithLabelValues(method, d.pattern, status).Inc()
		d.metrics.RequestDuration.WithLabelValues(method, d.pattern, status).Observe(duration)
	}()

	b, ok := d.bindings[method]
	if !ok {
		ww.Header().Set("Allow", strings.Join(DefaultMethods, ", "))
		utils.RespondWithErrorJSON(ww, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	params := Params{
		InstanceID: chi.URLParam(r, instanceIDParam),
	}

	for _, p := range b.requires {
		if !params.has(p) {
			utils.RespondWithErrorJSON(ww, http.StatusBadRequest, "missing "+p.String()+" parameter")
			return
		}
	}

	b.handler(ww, r.WithContext(ctx), params)
}

func statusLabel(code int) string {
	switch {
	case code == http.StatusNotFound:
		return "not_found"
	case code >= http.StatusBadRequest:
		return "error"
	default:
		return "success"
	}
}
