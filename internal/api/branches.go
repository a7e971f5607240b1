package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tablero/internal/branchapi"
	"tablero/internal/console"
	"tablero/internal/metrics"
	"tablero/internal/model"
	"tablero/internal/report"
	"tablero/internal/schedule"
)

// EnableRequest is the body for POST /api/branches/enable.
type EnableRequest struct {
	BranchIDs []string `json:"branch_ids"`
}

// SettingsRequest is the body for PUT /api/branches/{id}/settings. The week
// arrives in its wire form, an object of day keys to [from,to] pairs.
type SettingsRequest struct {
	ReservationDuration int              `json:"reservation_duration"`
	ReservationTimes    schedule.WeekMap `json:"reservation_times"`
}

// handleBranches lists active branches.
// GET /api/branches?enabled=true|false
func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("branches")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	branches := model.Active(s.store.List())
	switch r.URL.Query().Get("enabled") {
	case "true":
		branches = model.Enabled(branches)
	case "false":
		branches = model.Disabled(branches)
	}
	if branches == nil {
		branches = []*model.Branch{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

// handleEnable enables reservations for a batch of branches.
// POST /api/branches/enable
func (s *Server) handleEnable(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("branches_enable")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req EnableRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.BranchIDs) == 0 {
		writeError(w, http.StatusBadRequest, "branch_ids is required")
		return
	}

	outcome, err := s.console.EnableBranches(r.Context(), req.BranchIDs)
	if err != nil {
		writeError(w, http.StatusBadGateway, s.console.Err())
		return
	}

	// Partial failures still answer 200; the outcome body carries the
	// failed subset so the caller can offer a retry.
	writeJSON(w, http.StatusOK, outcome)
}

// handleDisableAll disables reservations everywhere, all-or-nothing.
// POST /api/branches/disable-all
func (s *Server) handleDisableAll(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("branches_disable_all")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.console.DisableAll(r.Context()); err != nil {
		writeError(w, upstreamStatus(err), s.console.Err())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleBranchSettings saves a branch's reservation settings.
// PUT /api/branches/{id}/settings
func (s *Server) handleBranchSettings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("branch_settings")

	id, ok := splitSettingsPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use PUT")
		return
	}

	var req SettingsRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	for day := range req.ReservationTimes {
		if !schedule.ValidDay(day) {
			writeError(w, http.StatusBadRequest, "unknown weekday: "+string(day))
			return
		}
	}
	times := schedule.Clone(req.ReservationTimes)

	if errState := s.validateSettings(req.ReservationDuration, times); errState.HasErrors() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errState})
		return
	}

	err := s.console.UpdateSettings(r.Context(), id, model.SettingsUpdate{
		Duration: req.ReservationDuration,
		Times:    times,
	})
	if err != nil {
		if errors.Is(err, console.ErrBranchNotFound) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		writeError(w, upstreamStatus(err), s.console.Err())
		return
	}

	b, _ := s.store.Get(id)
	writeJSON(w, http.StatusOK, map[string]any{"branch": b})
}

// validateSettings runs the full validate-after-mutate pipeline: duration
// plus every day of the week, errors projected into one ErrorState.
func (s *Server) validateSettings(duration int, times schedule.WeekMap) *schedule.ErrorState {
	errState := schedule.NewErrorState()

	ok := schedule.ValidateDuration(duration, s.rules.MinDuration)
	errState.ApplyDurationVerdict(ok, s.messages)
	if !ok {
		metrics.IncValidationFailure(string(schedule.KindDuration))
	}

	for _, day := range schedule.Days {
		verdict := schedule.ValidateDaySlots(times[day])
		if verdict == nil {
			verdict = schedule.ValidateDayCount(times[day], s.rules.MaxSlotsPerDay)
		}
		errState.ApplyDayVerdict(day, verdict, s.messages)
		if verdict != nil {
			metrics.IncValidationFailure(string(verdict.Kind))
		}
	}
	return errState
}

// handleExport streams the schedule workbook.
// GET /api/branches/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("branches_export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filename := "branch-schedules-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := report.WriteWorkbook(s.store.List(), w); err != nil {
		s.logger.Error().Err(err).Msg("schedule export failed")
	}
}

// splitSettingsPath extracts the branch id from /api/branches/{id}/settings.
func splitSettingsPath(path string) (string, bool) {
	trimmed := strings.TrimPrefix(path, "/api/branches/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "settings" {
		return "", false
	}
	return parts[0], true
}

// upstreamStatus maps a coordinator failure onto a response code, passing
// the upstream status through when the failure was a normalized rejection.
func upstreamStatus(err error) int {
	var apiErr *branchapi.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
