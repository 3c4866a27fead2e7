package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/theirongolddev/calciq/internal/budget"
	"github.com/theirongolddev/calciq/internal/model"
	"github.com/theirongolddev/calciq/internal/store"
)

// PlanRequest is the body of POST /v1/plans.
type PlanRequest struct {
	Income    float64        `json:"income"`
	FixedRent float64        `json:"fixed_rent"`
	Members   int            `json:"members"`
	Lifestyle string         `json:"lifestyle"`
	City      string         `json:"city"`
	Formula   string         `json:"formula"`
	Edits     map[string]any `json:"edits"`
	Save      bool           `json:"save"`
	Name      string         `json:"name"`
}

// PlanResponse is returned by POST /v1/plans.
type PlanResponse struct {
	Plan  *budget.Plan     `json:"plan"`
	Saved *model.SavedPlan `json:"saved,omitempty"`
}

const maxBodyBytes = 1 << 16

func (s *Service) handleComputePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	formula := s.cfg.DefaultFormula
	if req.Formula != "" {
		f, err := budget.ParseFormula(req.Formula)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		formula = f
	}

	edits, err := parseEdits(req.Edits)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := budget.ComputePlan(budget.Input{
		Income:    req.Income,
		FixedRent: req.FixedRent,
		Members:   req.Members,
		Lifestyle: budget.Lifestyle(req.Lifestyle),
		City:      req.City,
		Formula:   formula,
	})
	var verr *budget.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusUnprocessableEntity, verr.Error())
		return
	}
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, e := range edits {
		budget.UpdateField(plan, e.category, e.raw)
	}

	s.mu.Lock()
	s.plansComputed++
	s.mu.Unlock()
	s.publishEvent(Event{Type: EventPlanComputed, Income: plan.Income, TotalSave: plan.TotalSave})

	resp := PlanResponse{Plan: plan}
	if req.Save {
		if s.store == nil {
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
		saved, err := s.store.SavePlan(r.Context(), req.Name, plan)
		if err != nil {
			s.recordError(err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.mu.Lock()
		s.plansSaved++
		s.mu.Unlock()
		s.publishEvent(Event{
			Type:      EventPlanSaved,
			PlanID:    saved.ID.String(),
			Name:      saved.Name,
			Income:    plan.Income,
			TotalSave: plan.TotalSave,
		})
		resp.Saved = &saved
	}

	writeJSON(w, http.StatusOK, resp)
}

type edit struct {
	category budget.Category
	raw      string
}

// parseEdits resolves category names and orders edits by category so the
// result does not depend on map iteration.
func parseEdits(in map[string]any) ([]edit, error) {
	out := make([]edit, 0, len(in))
	for name, v := range in {
		c, ok := budget.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		out = append(out, edit{category: c, raw: editValue(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].category < out[j].category })
	return out, nil
}

func editValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func (s *Service) handleListPlans(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if plans == nil {
		plans = []model.SavedPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Service) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	sp, err := s.store.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Service) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	id := r.PathValue("id")
	if err := s.store.DeletePlan(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.publishEvent(Event{Type: EventPlanDeleted, PlanID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleScores(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	limit := s.cfg.LeaderboardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = min(n, 100)
	}
	scores, err := s.store.TopScores(r.Context(), limit)
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if scores == nil {
		scores = []model.ScoreEntry{}
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Service) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrAmbiguous):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
