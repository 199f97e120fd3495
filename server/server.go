// Package server exposes a finished PnL run over HTTP: JSON endpoints for
// the timeseries, the final positions and the KPIs, plus a websocket that
// replays the timeseries row by row.
package server

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/quantegy/pnl"
)

// Server serves the most recently published result. It is safe to publish
// a new result while requests are in flight.
type Server struct {
	mu       sync.RWMutex
	res      *pnl.Result
	rowHub   *hub[pnl.Row]
	upgrader websocket.Upgrader
}

func New() *Server {
	return &Server{
		rowHub:   newHub[pnl.Row](),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// Publish makes res the served result and broadcasts its rows to every
// connected websocket subscriber.
func (s *Server) Publish(res *pnl.Result) {
	s.mu.Lock()
	s.res = res
	s.mu.Unlock()

	for _, row := range res.Rows() {
		s.rowHub.Broadcast(row)
	}
}

func (s *Server) current() *pnl.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/timeseries", s.handleTimeseries)
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/kpis", s.handleKPIs)
	mux.HandleFunc("/ws/timeseries", s.handleRowStream)
	return mux
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("serving results on http://%s", addr)
	return http.ListenAndServe(addr, s.Routes())
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	res := s.current()
	if !methodAndResult(w, r, res) {
		return
	}
	writeJSON(w, http.StatusOK, res.Rows())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	res := s.current()
	if !methodAndResult(w, r, res) {
		return
	}
	writeJSON(w, http.StatusOK, res.PositionsSnapshot())
}

// kpiResponse mirrors pnl.KPIReport with a nullable profit factor: +Inf
// (wins, no losses) has no JSON representation.
type kpiResponse struct {
	RealizedTotal   pnl.Money `json:"realized_total"`
	UnrealizedTotal pnl.Money `json:"unrealized_total"`
	GrossTotal      pnl.Money `json:"gross_total"`
	WinRate         float64   `json:"win_rate"`
	AverageTradePnL pnl.Money `json:"average_trade_pnl"`
	ProfitFactor    *float64  `json:"profit_factor"`
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	res := s.current()
	if !methodAndResult(w, r, res) {
		return
	}

	k := res.KPIs()
	out := kpiResponse{
		RealizedTotal:   k.RealizedTotal,
		UnrealizedTotal: k.UnrealizedTotal,
		GrossTotal:      k.GrossTotal,
		WinRate:         k.WinRate,
		AverageTradePnL: k.AverageTradePnL,
	}
	if !math.IsInf(k.ProfitFactor, 0) {
		out.ProfitFactor = &k.ProfitFactor
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRowStream replays the current timeseries over the websocket, then
// keeps streaming rows published later, until the client goes away.
func (s *Server) handleRowStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.rowHub.Subscribe(64)
	defer s.rowHub.Unsubscribe(sub)

	// The read pump only detects the client closing, inbound messages are
	// discarded.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if res := s.current(); res != nil {
		for _, row := range res.Rows() {
			if err := conn.WriteJSON(row); err != nil {
				return
			}
		}
	}

	for {
		select {
		case row, ok := <-sub.ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(row); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

func methodAndResult(w http.ResponseWriter, r *http.Request, res *pnl.Result) bool {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	if res == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no result published yet"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
