package handler

import (
	"fmt"
	"net/http"

	"ads-api/pkg/utils"
)

func (res *Resource[T]) list(w http.ResponseWriter, r *http.Request, _ Params) {
	entities, err := res.store.List(r.Context())
	if err != nil {
		res.storeError(w, r, "list "+res.name, err)
		return
	}

	items := make([]OrderedObject, 0, len(entities))
	for _, entity := range entities {
		items = append(items, res.Render(entity))
	}

	utils.RespondWithJSON(w, http.StatusOK, OrderedObject{{Key: res.name, Value: items}})
}

func (res *Resource[T]) create(w http.ResponseWriter, r *http.Request, _ Params) {
	fields, err := decodeFields(w, r)
	if err != nil {
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	entity, err := res.factory(fields)
	if err != nil {
		if isInvalid(err) {
			utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		res.storeError(w, r, "build "+res.singular, err)
		return
	}

	created, err := res.store.Create(r.Context(), entity)
	if err != nil {
		res.storeError(w, r, "create "+res.singular, err)
		return
	}

	if id, ok := created.Field(res.idField); ok {
		w.Header().Set("Location", fmt.Sprintf("%s/%v", res.CollectionPath(), id))
	}

	utils.RespondWithJSON(w, http.StatusCreated, res.Render(created))
}
