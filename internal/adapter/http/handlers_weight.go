package adapthttp

import (
	"fmt"
	"net/http"
	"time"

	"fitmate/internal/app"
)

type weightBody struct {
	Weight float64    `json:"weight"`
	Date   *time.Time `json:"date"`
	Note   string     `json:"note"`
}

func (b weightBody) date() time.Time {
	if b.Date == nil {
		return time.Time{}
	}
	return *b.Date
}

func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		from, to, err := rangeQuery(r, s.engine.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		items, err := s.weight.LoadAll(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": app.EntriesBetween(items, from, to)})

	case http.MethodPost:
		var body weightBody
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, err := s.weight.Save(ctx, body.Weight, body.date(), body.Note)
		if err != nil {
			s.mutationFailed(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleWeightByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodPut:
		var body weightBody
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, err := s.weight.Update(ctx, id, body.Weight, body.date(), body.Note)
		if err != nil {
			s.mutationFailed(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entry": entry})

	case http.MethodDelete:
		if err := s.weight.Delete(ctx, id); err != nil {
			s.mutationFailed(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleWeightRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	all, err := s.weight.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	days := intQuery(r, "days", app.DefaultRecentDays)
	items := app.RecentEntries(all, days, time.Now(), s.engine.Location())
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleWeightChange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	all, err := s.weight.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"change": app.NetChange(all), "count": len(all)})
}

func (s *Server) handleWeightWeekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	unit := unitQuery(r)
	weeks, err := s.charts.GetWeekly(r.Context(), unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unit": unit, "items": weeks})
}

func (s *Server) handleWeightExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	all, err := s.weight.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	name := fmt.Sprintf("weights-%s.csv", dayString(time.Now(), s.engine.Location()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(app.ExportCSV(all, s.engine.Location())))
}
