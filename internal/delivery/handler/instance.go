package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"ads-api/pkg/utils"
)

// parseInstanceID rejects ids no store could have assigned; callers answer
// those with 404 like any other absent entity.
func parseInstanceID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (res *Resource[T]) read(w http.ResponseWriter, r *http.Request, params Params) {
	id, ok := parseInstanceID(params.InstanceID)
	if !ok {
		respondNotFoundJSON(w)
		return
	}

	entity, err := res.store.Get(r.Context(), id)
	if err != nil {
		res.storeError(w, r, "read "+res.singular, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, res.Render(entity))
}

// update applies a partial patch: only declared properties present in the
// body change, and the identifying field is never written.
func (res *Resource[T]) update(w http.ResponseWriter, r *http.Request, params Params) {
	fields, err := decodeFields(w, r)
	if err != nil {
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	id, ok := parseInstanceID(params.InstanceID)
	if !ok {
		respondNotFoundJSON(w)
		return
	}

	entity, err := res.store.Get(r.Context(), id)
	if err != nil {
		res.storeError(w, r, "read "+res.singular, err)
		return
	}

	for _, name := range res.properties {
		raw, present := fields[name]
		if !present || name == res.idField {
			continue
		}
		if _, err := entity.SetField(name, raw); err != nil {
			utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	updated, err := res.store.Update(r.Context(), entity)
	if err != nil {
		res.storeError(w, r, "update "+res.singular, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, res.Render(updated))
}

func (res *Resource[T]) delete(w http.ResponseWriter, r *http.Request, params Params) {
	notFound := fmt.Sprintf("%s %s doesn't exist", res.singular, params.InstanceID)

	id, ok := parseInstanceID(params.InstanceID)
	if !ok {
		utils.RespondWithText(w, http.StatusNotFound, notFound)
		return
	}

	if err := res.store.Delete(r.Context(), id); err != nil {
		if isNotFound(err) {
			utils.RespondWithText(w, http.StatusNotFound, notFound)
			return
		}
		res.storeError(w, r, "delete "+res.singular, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
