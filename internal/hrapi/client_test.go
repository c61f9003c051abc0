package hrapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, StaticToken("secret"))
	require.NoError(t, err)
	return client
}

func TestAllMonthlyReportsDoubleNesting(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/attendance/report/all", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.Equal(t, "2024", r.URL.Query().Get("year"))
		require.Equal(t, "3", r.URL.Query().Get("month"))
		_, _ = w.Write([]byte(`{"reports":{"reports":[
			{"employeeId":"e1","name":"Ahmed Ali","totalWorkDurationHours":"7.5",
			 "department":{"dep_name":"Engineering"},
			 "dailyAttendance":[{"date":"2024-03-05","checkIn":"08:00","checkOut":"16:00","workDuration":480,"status":"present"}]},
			{"employeeId":"e2","name":"Sara","totalWorkDurationHours":8,"department":"HR"}
		]}}`))
	})

	reports, err := client.AllMonthlyReports(context.Background(), 2024, 3)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Equal(t, "e1", reports[0].EmployeeID)
	require.Equal(t, Department("Engineering"), reports[0].Department)
	require.InDelta(t, 7.5, reports[0].TotalWorkHours.Float64(), 1e-9)
	require.Equal(t, Department("HR"), reports[1].Department)
	require.InDelta(t, 8, reports[1].TotalWorkHours.Float64(), 1e-9)
	require.Len(t, reports[0].DailyAttendance, 1)
	require.Equal(t, 480, reports[0].DailyAttendance[0].WorkDuration)
}

func TestMyMonthlyReportNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.MyMonthlyReport(context.Background(), 2024, 2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveFiltersInvalidEntries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "admin", r.URL.Query().Get("role"))
		_, _ = w.Write([]byte(`{"archive":[{"year":2024,"month":3},{"year":2024,"month":13},{"year":1999,"month":5}]}`))
	})

	items, err := client.Archive(context.Background(), RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, []ArchiveItem{{Month: 3, Year: 2024}}, items)
}

func TestClientMapsServerErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.TodayStatus(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClientMapsUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.CheckIn(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestHoursUnmarshalLenient(t *testing.T) {
	cases := map[string]float64{
		`7.25`:   7.25,
		`"7.25"`: 7.25,
		`" 8 "`:  8,
		`null`:   0,
		`"n/a"`:  0,
		`"nope"`: 0,
		`""`:     0,
	}
	for raw, want := range cases {
		var h Hours
		if err := json.Unmarshal([]byte(raw), &h); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if h.Float64() != want {
			t.Fatalf("unmarshal %s: got %v want %v", raw, h.Float64(), want)
		}
	}
}

func TestTodayStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/attendance/status/today", r.URL.Path)
		_, _ = w.Write([]byte(`{"isCheckedIn":true}`))
	})

	status, err := client.TodayStatus(context.Background())
	require.NoError(t, err)
	require.True(t, status.IsCheckedIn)
}
