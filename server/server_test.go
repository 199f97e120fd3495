package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/quantegy/pnl"
)

func sampleResult(t *testing.T) *pnl.Result {
	t.Helper()

	e, err := pnl.New(pnl.FIFO)
	assert.NoError(t, err)

	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	res, err := e.ProcessFills([]pnl.Fill{
		{Time: start, Symbol: "AA", Side: pnl.Buy, Price: pnl.M(10, ""), Qty: pnl.Q(100)},
		{Time: start.Add(time.Minute), Symbol: "AA", Side: pnl.Sell, Price: pnl.M(15, ""), Qty: pnl.Q(100)},
	})
	assert.NoError(t, err)
	return res
}

func TestNoResultYet(t *testing.T) {
	ts := httptest.NewServer(New().Routes())
	defer ts.Close()

	for _, path := range []string{"/api/timeseries", "/api/positions", "/api/kpis"} {
		resp, err := http.Get(ts.URL + path)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestTimeseriesEndpoint(t *testing.T) {
	srv := New()
	srv.Publish(sampleResult(t))
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/timeseries")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []map[string]any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	assert.Len(t, rows, 2)
	assert.Equal(t, "AA", rows[0]["symbol"])
	// amounts travel as exact decimal strings
	assert.Equal(t, "500", rows[1]["realized_symbol"])
}

func TestPositionsEndpoint(t *testing.T) {
	srv := New()
	srv.Publish(sampleResult(t))
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/positions")
	assert.NoError(t, err)
	defer resp.Body.Close()

	var positions map[string]map[string]any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&positions))
	assert.Contains(t, positions, "AA")
	assert.Equal(t, "0", positions["AA"]["net_qty"])
	assert.Equal(t, "500", positions["AA"]["realized_total"])
}

func TestKPIsEndpointInfiniteProfitFactor(t *testing.T) {
	srv := New()
	srv.Publish(sampleResult(t)) // one winning close, no losses
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/kpis")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var kpis map[string]any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&kpis))
	assert.Equal(t, float64(1), kpis["win_rate"])
	assert.Equal(t, "500", kpis["realized_total"])
	assert.Nil(t, kpis["profit_factor"])
}

func TestRowStreamReplay(t *testing.T) {
	srv := New()
	res := sampleResult(t)
	srv.Publish(res)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/timeseries"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	want := res.Rows()
	for i := range want {
		var row map[string]any
		assert.NoError(t, conn.ReadJSON(&row))
		assert.Equal(t, want[i].Symbol, row["symbol"])
		assert.Equal(t, want[i].RealizedTotal.String(), row["realized_total"])
	}
}
