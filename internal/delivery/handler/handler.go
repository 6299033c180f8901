package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"ads-api/internal/domain"
	"ads-api/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

// Entity is a record a Resource can render and patch by field name.
type Entity interface {
	Field(name string) (any, bool)
	SetField(name string, raw jsoniter.RawMessage) (bool, error)
}

// Store persists entities of one kind. Lookups of absent ids must return an
// error matching domain.ErrNotFound.
type Store[T Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Factory builds an unsaved entity from a decoded request body.
type Factory[T Entity] func(fields map[string]jsoniter.RawMessage) (T, error)

var errBodyNotObject = errors.New("request body must be a JSON object")

func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]jsoniter.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	// Unmarshal fails on anything after the first value.
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errBodyNotObject
	}
	return fields, nil
}

func respondNotFoundJSON(w http.ResponseWriter) {
	utils.RespondWithJSON(w, http.StatusNotFound, map[string]int{"not found": http.StatusNotFound})
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func isInvalid(err error) bool {
	return errors.Is(err, domain.ErrInvalid)
}
