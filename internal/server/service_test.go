package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/calciq/internal/model"
	"github.com/theirongolddev/calciq/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "calciq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(Config{EventsBuffer: 10}, st), st
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestService(t)
	w := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

func TestComputePlan(t *testing.T) {
	s, _ := newTestService(t)
	w := do(t, s.Handler(), http.MethodPost, "/v1/plans", `{"income":50000,"members":2,"lifestyle":"middle"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[PlanResponse](t, w)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, int64(5100), resp.Plan.Grocery)
	assert.Equal(t, 12800.0, resp.Plan.TotalSave)
	assert.Nil(t, resp.Saved)
}

func TestComputePlan_LowIncome(t *testing.T) {
	s, _ := newTestService(t)
	w := do(t, s.Handler(), http.MethodPost, "/v1/plans", `{"income":400,"members":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "income too low", decode[errorBody](t, w).Error)
}

func TestComputePlan_EditsDoNotReallocate(t *testing.T) {
	s, _ := newTestService(t)
	body := `{"income":50000,"members":2,"lifestyle":"middle","edits":{"rent":20000,"Dining":"oops","bills":"1300.9"}}`
	w := do(t, s.Handler(), http.MethodPost, "/v1/plans", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p := decode[PlanResponse](t, w).Plan
	assert.Equal(t, int64(20000), p.Rent)
	assert.Zero(t, p.Dining)
	assert.Equal(t, int64(1300), p.Utility)
	assert.Equal(t, int64(5120), p.Shopping, "untouched lines keep their allocation")
	assert.Equal(t, 50000.0-29400-7680, p.TotalSave)
}

func TestComputePlan_BadRequests(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()
	for _, body := range []string{
		`{"income":`,
		`{"income":50000,"edits":{"savings":1}}`,
		`{"income":50000,"formula":"average"}`,
	} {
		w := do(t, h, http.MethodPost, "/v1/plans", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestPlanLifecycle(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/v1/plans", `{"income":60000,"members":3,"lifestyle":"frugal","save":true,"name":"april"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[PlanResponse](t, w).Saved
	require.NotNil(t, saved)
	assert.Equal(t, "april", saved.Name)

	w = do(t, h, http.MethodGet, "/v1/plans", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.SavedPlan](t, w), 1)

	w = do(t, h, http.MethodGet, "/v1/plans/"+saved.ShortID(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, saved.ID, decode[model.SavedPlan](t, w).ID)

	w = do(t, h, http.MethodDelete, "/v1/plans/"+saved.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/v1/plans/"+saved.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/v1/events", "")
	var types []string
	for _, ev := range decode[[]Event](t, w) {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{EventPlanComputed, EventPlanSaved, EventPlanDeleted}, types)

	st := decode[Status](t, do(t, h, http.MethodGet, "/v1/status", ""))
	assert.Equal(t, int64(1), st.PlansComputed)
	assert.Equal(t, int64(1), st.PlansSaved)
	assert.Equal(t, 3, st.EventCount)
	assert.Equal(t, int64(7), st.Requests)
}

func TestScores(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()
	for _, score := range []int{100, 900, 300, 700, 500, 200} {
		_, err := st.RecordScore(ctx, model.ScoreEntry{Score: score, Level: 1})
		require.NoError(t, err)
	}
	h := s.Handler()

	top := decode[[]model.ScoreEntry](t, do(t, h, http.MethodGet, "/v1/scores", ""))
	require.Len(t, top, 5)
	assert.Equal(t, 900, top[0].Score)

	top = decode[[]model.ScoreEntry](t, do(t, h, http.MethodGet, "/v1/scores?limit=2", ""))
	require.Len(t, top, 2)
	assert.Equal(t, 700, top[1].Score)

	w := do(t, h, http.MethodGet, "/v1/scores?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNilStore(t *testing.T) {
	s := New(Config{}, nil)
	w := do(t, s.Handler(), http.MethodGet, "/v1/plans", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil)

	s.publishEvent(Event{Type: EventPlanComputed})
	s.publishEvent(Event{Type: EventPlanComputed})
	s.publishEvent(Event{Type: EventPlanComputed})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPublishEventFansOut(t *testing.T) {
	s := New(Config{}, nil)
	ch := make(chan Event, 1)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	s.publishEvent(Event{Type: EventPlanSaved, Name: "x"})
	s.publishEvent(Event{Type: EventPlanSaved, Name: "dropped"})

	ev := <-ch
	assert.Equal(t, "x", ev.Name)
	assert.Equal(t, int64(1), ev.ID)
}
