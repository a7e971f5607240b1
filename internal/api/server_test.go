package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tablero/internal/branchapi"
	"tablero/internal/console"
	"tablero/internal/model"
	"tablero/internal/schedule"
	"tablero/internal/store"
)

type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) UpdateBranch(ctx context.Context, id string, payload any) (*model.Branch, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Branch), args.Error(1)
}

func testBranch(id string, enabled bool) *model.Branch {
	return &model.Branch{
		ID:                  id,
		Name:                "Branch " + id,
		AcceptsReservations: enabled,
		ReservationDuration: 30,
		ReservationTimes:    schedule.NewWeekMap(),
	}
}

func setup(t *testing.T, branches ...*model.Branch) (*httptest.Server, *mockUpdater, *store.Store) {
	t.Helper()
	st := store.New()
	st.SetAll(branches)
	api := new(mockUpdater)
	logger := zerolog.New(io.Discard)
	c := console.New(st, api, &logger)

	srv := NewServer(":0", "", c, st, Rules{MinDuration: 5, MaxSlotsPerDay: 3}, &logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, api, st
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func putJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHandleBranches(t *testing.T) {
	ts, _, _ := setup(t, testBranch("1", true), testBranch("2", false))

	resp, err := http.Get(ts.URL + "/api/branches?enabled=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Branches []*model.Branch `json:"branches"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Branches, 1)
	assert.Equal(t, "1", body.Branches[0].ID)
}

func TestHandleEnablePartial(t *testing.T) {
	ts, api, st := setup(t, testBranch("1", false), testBranch("2", false), testBranch("3", false))

	enabled1 := testBranch("1", true)
	enabled3 := testBranch("3", true)
	api.On("UpdateBranch", mock.Anything, "1", mock.Anything).Return(enabled1, nil).Once()
	api.On("UpdateBranch", mock.Anything, "2", mock.Anything).
		Return(nil, &branchapi.APIError{Status: 500, Message: "nope"}).Once()
	api.On("UpdateBranch", mock.Anything, "3", mock.Anything).Return(enabled3, nil).Once()

	resp := postJSON(t, ts.URL+"/api/branches/enable", EnableRequest{BranchIDs: []string{"1", "2", "3"}})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome console.Outcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&outcome))
	assert.False(t, outcome.OK)
	assert.Equal(t, []string{"1", "3"}, outcome.Enabled)
	assert.Equal(t, []string{"2"}, outcome.Failed)

	b2, _ := st.Get("2")
	assert.False(t, b2.AcceptsReservations)
}

func TestHandleEnableTotalFailure(t *testing.T) {
	ts, api, _ := setup(t, testBranch("1", false))

	api.On("UpdateBranch", mock.Anything, "1", mock.Anything).
		Return(nil, &branchapi.APIError{Status: 503, Message: "maintenance"}).Once()

	resp := postJSON(t, ts.URL+"/api/branches/enable", EnableRequest{BranchIDs: []string{"1"}})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "maintenance", body.Error)
}

func TestHandleEnableValidation(t *testing.T) {
	ts, _, _ := setup(t, testBranch("1", false))

	resp := postJSON(t, ts.URL+"/api/branches/enable", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleDisableAll(t *testing.T) {
	ts, api, st := setup(t, testBranch("1", true), testBranch("2", true))

	api.On("UpdateBranch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil).Twice()

	resp := postJSON(t, ts.URL+"/api/branches/disable-all", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, b := range st.List() {
		assert.False(t, b.AcceptsReservations)
	}
}

func TestHandleSettingsValidationErrors(t *testing.T) {
	ts, api, _ := setup(t, testBranch("1", true))

	times := schedule.NewWeekMap()
	times[schedule.Monday] = []schedule.TimeSlot{
		{From: "09:00", To: "12:00"},
		{From: "11:00", To: "14:00"},
	}

	resp := putJSON(t, ts.URL+"/api/branches/1/settings", SettingsRequest{
		ReservationDuration: 2, // below the configured minimum of 5
		ReservationTimes:    times,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Errors struct {
			Duration string            `json:"duration"`
			Slots    map[string]string `json:"slots"`
		} `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Errors.Duration)
	assert.Contains(t, body.Errors.Slots, "monday")

	// Nothing valid was saved, so no upstream call happened.
	api.AssertNumberOfCalls(t, "UpdateBranch", 0)
}

func TestHandleSettingsSlotCap(t *testing.T) {
	ts, _, _ := setup(t, testBranch("1", true))

	times := schedule.NewWeekMap()
	times[schedule.Friday] = []schedule.TimeSlot{
		{From: "08:00", To: "09:00"},
		{From: "10:00", To: "11:00"},
		{From: "12:00", To: "13:00"},
		{From: "14:00", To: "15:00"},
	}

	resp := putJSON(t, ts.URL+"/api/branches/1/settings", SettingsRequest{
		ReservationDuration: 30,
		ReservationTimes:    times,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleSettingsSuccess(t *testing.T) {
	ts, api, st := setup(t, testBranch("1", true))

	times := schedule.NewWeekMap()
	times[schedule.Saturday] = []schedule.TimeSlot{{From: "09:00", To: "12:00"}, {From: "12:00", To: "15:00"}}

	server := testBranch("1", true)
	server.ReservationDuration = 90
	server.ReservationTimes = schedule.Clone(times)
	api.On("UpdateBranch", mock.Anything, "1", mock.Anything).Return(server, nil).Once()

	resp := putJSON(t, ts.URL+"/api/branches/1/settings", SettingsRequest{
		ReservationDuration: 90,
		ReservationTimes:    times,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, _ := st.Get("1")
	assert.Equal(t, 90, b.ReservationDuration)
}

func TestHandleSettingsUnknownBranch(t *testing.T) {
	ts, api, _ := setup(t, testBranch("1", true))

	resp := putJSON(t, ts.URL+"/api/branches/ghost/settings", SettingsRequest{
		ReservationDuration: 30,
		ReservationTimes:    schedule.NewWeekMap(),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	api.AssertNumberOfCalls(t, "UpdateBranch", 0)
}

func TestHandleSettingsUnknownDay(t *testing.T) {
	ts, _, _ := setup(t, testBranch("1", true))

	resp := putJSON(t, ts.URL+"/api/branches/1/settings", map[string]any{
		"reservation_duration": 30,
		"reservation_times":    map[string]any{"funday": [][]string{}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleExport(t *testing.T) {
	ts, _, _ := setup(t, testBranch("1", true))

	resp, err := http.Get(ts.URL + "/api/branches/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestAPIKeyRequired(t *testing.T) {
	st := store.New()
	api := new(mockUpdater)
	logger := zerolog.New(io.Discard)
	srv := NewServer(":0", "sekrit", console.New(st, api, &logger), st, Rules{MinDuration: 1}, &logger)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/branches")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/branches", nil)
	req.Header.Set("X-API-Key", "sekrit")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
