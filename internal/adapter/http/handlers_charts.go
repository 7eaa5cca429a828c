package adapthttp

import (
	"net/http"
	"time"

	"fitmate/internal/app"
	"fitmate/internal/domain"
)

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleChartsDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	days := intQuery(r, "days", 90)
	unit := unitQuery(r)

	points, err := s.charts.GetDaily(r.Context(), days, unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"unit":  unit,
		"today": dayString(time.Now(), s.engine.Location()),
		"items": points,
	})
}

// handleCalorieTarget returns the daily target for the posted profile and
// the balance of the last days days against it.
func (s *Server) handleCalorieTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var p domain.Profile
	if err := parseJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	target, err := domain.DailyCalorieTarget(p)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	balance, err := s.charts.Balance(r.Context(), p, intQuery(r, "days", app.DefaultRecentDays))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"target": target, "balance": balance})
}
