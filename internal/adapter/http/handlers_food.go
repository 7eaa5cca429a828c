package adapthttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"fitmate/internal/app"
	"fitmate/internal/domain"
)

// maxImageBytes bounds the body of /food/recognize.
const maxImageBytes = 10 << 20

type foodBody struct {
	Name     string          `json:"name"`
	Calories int             `json:"calories"`
	Time     *time.Time      `json:"time"`
	Meal     domain.MealType `json:"meal"`
	Fat      float64         `json:"fat"`
	Carbs    float64         `json:"carbs"`
	Protein  float64         `json:"protein"`
}

func (b foodBody) entry() domain.FoodEntry {
	e := domain.FoodEntry{
		Name:     b.Name,
		Calories: b.Calories,
		Meal:     b.Meal,
		Fat:      b.Fat,
		Carbs:    b.Carbs,
		Protein:  b.Protein,
	}
	if b.Time != nil {
		e.Time = *b.Time
	}
	return e
}

func (s *Server) handleFoods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		from, to, err := rangeQuery(r, s.engine.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		items, err := s.food.LoadAll(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if r.URL.Query().Has("days") {
			items = app.RecentEntries(items, intQuery(r, "days", app.DefaultRecentDays), time.Now(), s.engine.Location())
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": app.EntriesBetween(items, from, to)})

	case http.MethodPost:
		var body foodBody
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, err := s.food.Save(ctx, body.entry())
		if err != nil {
			s.mutationFailed(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleFoodByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.food.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.mutationFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleFoodLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	draft, err := s.food.Lookup(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.log.Warn("nutrition lookup failed", "err", err)
		writeError(w, lookupStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (s *Server) handleFoodRecognize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	image, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	draft, confidence, err := s.food.Recognize(r.Context(), image)
	if err != nil {
		s.log.Warn("menu recognition failed", "err", err)
		writeError(w, lookupStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": draft, "confidence": confidence})
}

func (s *Server) handleFoodEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	kcal, ok := app.EstimateCaloriesFromText(body.Text)
	writeJSON(w, http.StatusOK, map[string]any{"calories": kcal, "found": ok})
}

// lookupStatus maps remote collaborator failures. Anything not classified
// by the services is an upstream problem.
func lookupStatus(err error) int {
	if status := statusFor(err); status != http.StatusInternalServerError {
		return status
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
