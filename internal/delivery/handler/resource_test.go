package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ads-api/internal/domain"
	"ads-api/internal/infrastructure/metrics"
	"ads-api/pkg/logger"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

type memStore struct {
	mu     sync.Mutex
	nextID int64
	ads    map[int64]domain.Ad
	fail   bool
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, ads: map[int64]domain.Ad{}}
}

func (s *memStore) List(context.Context) ([]*domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errStoreDown
	}
	out := make([]*domain.Ad, 0, len(s.ads))
	for id := int64(1); id < s.nextID; id++ {
		if ad, ok := s.ads[id]; ok {
			ad := ad
			out = append(out, &ad)
		}
	}
	return out, nil
}

func (s *memStore) Get(_ context.Context, id int64) (*domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ad, ok := s.ads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ad, nil
}

func (s *memStore) Create(_ context.Context, ad *domain.Ad) (*domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *ad
	created.ID = s.nextID
	s.nextID++
	s.ads[created.ID] = created
	return &created, nil
}

func (s *memStore) Update(_ context.Context, ad *domain.Ad) (*domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ads[ad.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	s.ads[ad.ID] = *ad
	updated := *ad
	return &updated, nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ads[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.ads, id)
	return nil
}

func newTestResource(t *testing.T, store *memStore, properties []string) http.Handler {
	t.Helper()

	res, err := NewResource(ResourceConfig[*domain.Ad]{
		Name:       "ads",
		Factory:    domain.NewAdFromFields,
		Store:      store,
		Properties: properties,
		IDField:    domain.FieldID,
	}, logger.Discard(), metrics.NewHandlerMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)

	r := chi.NewRouter()
	res.Register(r)
	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLogsBoundMethods(t *testing.T) {
	var buf bytes.Buffer
	loggers := &logger.Loggers{
		InfoLogger:  slog.New(slog.NewJSONHandler(&buf, nil)),
		ErrorLogger: slog.New(slog.NewJSONHandler(&buf, nil)),
	}

	res, err := NewResource(ResourceConfig[*domain.Ad]{
		Name:       "ads",
		Factory:    domain.NewAdFromFields,
		Store:      newMemStore(),
		Properties: domain.AdProperties,
		IDField:    domain.FieldID,
	}, loggers, nil)
	require.NoError(t, err)

	res.Register(chi.NewRouter())

	assert.Contains(t, buf.String(), `"pattern":"/ads","methods":"GET,POST"`)
	assert.Contains(t, buf.String(), `"pattern":"/ads/{instanceID}","methods":"DELETE,GET,PATCH"`)
}

const salePayload = `{"title":"Sale","description":"50% off","created_at":"2024-01-01","author":"alice"}`

func TestNewResourceValidatesConfig(t *testing.T) {
	base := ResourceConfig[*domain.Ad]{
		Name:       "ads",
		Factory:    domain.NewAdFromFields,
		Store:      newMemStore(),
		Properties: domain.AdProperties,
		IDField:    domain.FieldID,
	}

	tests := []struct {
		name   string
		mutate func(c *ResourceConfig[*domain.Ad])
	}{
		{"empty name", func(c *ResourceConfig[*domain.Ad]) { c.Name = "" }},
		{"name with slash", func(c *ResourceConfig[*domain.Ad]) { c.Name = "a/b" }},
		{"no factory", func(c *ResourceConfig[*domain.Ad]) { c.Factory = nil }},
		{"no store", func(c *ResourceConfig[*domain.Ad]) { c.Store = nil }},
		{"no properties", func(c *ResourceConfig[*domain.Ad]) { c.Properties = nil }},
		{"no id field", func(c *ResourceConfig[*domain.Ad]) { c.IDField = "" }},
		{"duplicate property", func(c *ResourceConfig[*domain.Ad]) { c.Properties = []string{"id", "id"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			_, err := NewResource(cfg, logger.Discard(), nil)
			assert.Error(t, err)
		})
	}

	res, err := NewResource(base, logger.Discard(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/ads", res.CollectionPath())
	assert.Equal(t, "/ads/{instanceID}", res.InstancePath())
}

func TestCreateThenRead(t *testing.T) {
	h := newTestResource(t, newMemStore(), domain.AdProperties)

	rec := do(h, http.MethodPost, "/ads", salePayload)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "/ads/1", rec.Header().Get("Location"))
	assert.Equal(t,
		`{"id":1,"title":"Sale","description":"50% off","created_at":"2024-01-01","author":"alice"}`,
		rec.Body.String())

	read := do(h, http.MethodGet, "/ads/1", "")
	require.Equal(t, http.StatusOK, read.Code)
	assert.Equal(t, rec.Body.String(), read.Body.String())
}

func TestCreateRejectsBadPayloads(t *testing.T) {
	h := newTestResource(t, newMemStore(), domain.AdProperties)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `title=Sale`, `{"error":"invalid request payload"}`},
		{"array", `[1,2]`, `{"error":"invalid request payload"}`},
		{"null", `null`, `{"error":"invalid request payload"}`},
		{"missing fields", `{"title":"Sale"}`, `{"error":"missing required fields: description, created_at, author"}`},
		{"trailing garbage", salePayload + ` garbage`, `{"error":"invalid request payload"}`},
		{"two objects", salePayload + salePayload, `{"error":"invalid request payload"}`},
		{"null field", `{"title":null,"description":"d","created_at":"c","author":"a"}`, `{"error":"field \"title\" must be a string"}`},
		{"number field", `{"title":"t","description":"d","created_at":"c","author":7}`, `{"error":"field \"author\" must be a string"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/ads", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}

	list := do(h, http.MethodGet, "/ads", "")
	assert.JSONEq(t, `{"ads":[]}`, list.Body.String())
}

func TestListRendersOnlyDeclaredProperties(t *testing.T) {
	store := newMemStore()
	h := newTestResource(t, store, []string{"title", "id"})

	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/ads", salePayload).Code)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/ads",
		`{"title":"Two","description":"d","created_at":"c","author":"bob"}`).Code)

	rec := do(h, http.MethodGet, "/ads", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"ads":[{"title":"Sale","id":1},{"title":"Two","id":2}]}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "author")
}

func TestReadMissing(t *testing.T) {
	h := newTestResource(t, newMemStore(), domain.AdProperties)

	for _, target := range []string{"/ads/7", "/ads/abc", "/ads/0"} {
		rec := do(h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.JSONEq(t, `{"not found": 404}`, rec.Body.String(), target)
	}
}

func TestPatch(t *testing.T) {
	store := newMemStore()
	h := newTestResource(t, store, domain.AdProperties)
	created := do(h, http.MethodPost, "/ads", salePayload)
	require.Equal(t, http.StatusCreated, created.Code)

	empty := do(h, http.MethodPatch, "/ads/1", `{}`)
	require.Equal(t, http.StatusOK, empty.Code)
	assert.Equal(t, created.Body.String(), empty.Body.String())

	rec := do(h, http.MethodPatch, "/ads/1", `{"title":"Clearance","id":99,"unknown":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		`{"id":1,"title":"Clearance","description":"50% off","created_at":"2024-01-01","author":"alice"}`,
		rec.Body.String())

	bad := do(h, http.MethodPatch, "/ads/1", `{"author":7}`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.JSONEq(t, `{"error":"field \"author\" must be a string"}`, bad.Body.String())

	null := do(h, http.MethodPatch, "/ads/1", `{"author":null}`)
	assert.Equal(t, http.StatusBadRequest, null.Code)
	assert.JSONEq(t, `{"error":"field \"author\" must be a string"}`, null.Body.String())

	trailing := do(h, http.MethodPatch, "/ads/1", `{"author":"bob"} {}`)
	assert.Equal(t, http.StatusBadRequest, trailing.Code)
	assert.JSONEq(t, `{"error":"invalid request payload"}`, trailing.Body.String())

	stored, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Author)

	missing := do(h, http.MethodPatch, "/ads/5", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, `{"not found": 404}`, missing.Body.String())
}

func TestDelete(t *testing.T) {
	h := newTestResource(t, newMemStore(), domain.AdProperties)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/ads", salePayload).Code)

	rec := do(h, http.MethodDelete, "/ads/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/ads/1", "").Code)

	again := do(h, http.MethodDelete, "/ads/1", "")
	assert.Equal(t, http.StatusNotFound, again.Code)
	assert.Equal(t, "ad 1 doesn't exist", again.Body.String())
	assert.True(t, strings.HasPrefix(again.Header().Get("Content-Type"), "text/plain"))
}

func TestUnsupportedVerbs(t *testing.T) {
	h := newTestResource(t, newMemStore(), domain.AdProperties)

	for _, tc := range []struct{ method, target string }{
		{http.MethodPut, "/ads"},
		{http.MethodPatch, "/ads"},
		{http.MethodPost, "/ads/1"},
		{http.MethodPut, "/ads/1"},
	} {
		rec := do(h, tc.method, tc.target, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, tc)
		assert.Equal(t, "GET, POST, PATCH, DELETE", rec.Header().Get("Allow"), tc)
	}
}

func TestStoreFailureIsInternalError(t *testing.T) {
	store := newMemStore()
	store.fail = true
	h := newTestResource(t, store, domain.AdProperties)

	rec := do(h, http.MethodGet, "/ads", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestOrderedObjectKeepsKeyOrder(t *testing.T) {
	obj := OrderedObject{{Key: "z", Value: 1}, {Key: "a", Value: "x"}, {Key: "m", Value: nil}}

	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x","m":null}`, string(out))
}
