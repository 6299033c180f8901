package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ads-api/internal/infrastructure/metrics"
	"ads-api/pkg/logger"
	"ads-api/pkg/utils"

	"github.com/go-chi/chi/v5"
)

type ResourceConfig[T Entity] struct {
	// Name is the plural collection name; it is both the path segment and
	// the key wrapping rendered lists.
	Name string
	// Singular names one entity in plain-text messages. Defaults to Name
	// without its trailing "s".
	Singular   string
	Factory    Factory[T]
	Store      Store[T]
	Properties []string
	IDField    string
}

// Resource binds a collection endpoint and an instance endpoint for one
// entity kind.
type Resource[T Entity] struct {
	name       string
	singular   string
	factory    Factory[T]
	store      Store[T]
	properties []string
	idField    string

	collection *Dispatcher
	instance   *Dispatcher
	logger     *logger.Loggers
}

func NewResource[T Entity](cfg ResourceConfig[T], loggers *logger.Loggers, metrics *metrics.HandlerMetrics) (*Resource[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	singular := cfg.Singular
	if singular == "" {
		singular = strings.TrimSuffix(cfg.Name, "s")
		if singular == "" {
			singular = cfg.Name
		}
	}

	res := &Resource[T]{
		name:       cfg.Name,
		singular:   singular,
		factory:    cfg.Factory,
		store:      cfg.Store,
		properties: append([]string(nil), cfg.Properties...),
		idField:    cfg.IDField,
		logger:     loggers,
	}

	res.collection = NewDispatcher(res.CollectionPath(), metrics)
	res.collection.Bind(http.MethodGet, res.list)
	res.collection.Bind(http.MethodPost, res.create)

	res.instance = NewDispatcher(res.InstancePath(), metrics)
	res.instance.Bind(http.MethodGet, res.read, ParamInstanceID)
	res.instance.Bind(http.MethodPatch, res.update, ParamInstanceID)
	res.instance.Bind(http.MethodDelete, res.delete, ParamInstanceID)

	return res, nil
}

func (cfg ResourceConfig[T]) validate() error {
	switch {
	case cfg.Name == "" || strings.ContainsAny(cfg.Name, "/{}"):
		return fmt.Errorf("invalid resource name %q", cfg.Name)
	case cfg.Factory == nil:
		return errors.New("resource factory is required")
	case cfg.Store == nil:
		return errors.New("resource store is required")
	case len(cfg.Properties) == 0:
		return errors.New("resource properties are required")
	case cfg.IDField == "":
		return errors.New("resource id field is required")
	}

	seen := make(map[string]struct{}, len(cfg.Properties))
	for _, p := range cfg.Properties {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("duplicate resource property %q", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

func (res *Resource[T]) CollectionPath() string {
	return "/" + res.name
}

func (res *Resource[T]) InstancePath() string {
	return "/" + res.name + "/{" + instanceIDParam + "}"
}

// Register mounts both endpoints for every HTTP verb; verb selection is left
// to the dispatchers.
func (res *Resource[T]) Register(r chi.Router) {
	for _, d := range []*Dispatcher{res.collection, res.instance} {
		r.Handle(d.pattern, d)
		res.logger.InfoLogger.Info("Route registered",
			"pattern", d.pattern,
			"methods", strings.Join(d.Methods(), ","))
	}
}

// Render projects the declared properties of entity, in declared order.
// Properties the entity does not know render as null.
func (res *Resource[T]) Render(entity T) OrderedObject {
	obj := make(OrderedObject, 0, len(res.properties))
	for _, name := range res.properties {
		value, ok := entity.Field(name)
		if !ok {
			value = nil
		}
		obj = append(obj, Member{Key: name, Value: value})
	}
	return obj
}

func (res *Resource[T]) storeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case isNotFound(err):
		respondNotFoundJSON(w)
	case isInvalid(err):
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
	default:
		res.logger.ErrorLogger.ErrorContext(r.Context(), "failed to "+action,
			"resource", res.name, utils.Err(err))
		utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}

type Member struct {
	Key   string
	Value any
}

// OrderedObject is a JSON object whose keys keep their slice order.
type OrderedObject []Member

func (o OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
