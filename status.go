package main

// Local status endpoint.
//
//   GET /status       bridge state as JSON
//   GET /debug/vars   expvar counters

import (
	"context"
	"errors"
	"expvar"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ====== metrics (expvar) ======
var (
	evSessions       = expvar.NewInt("sessions")
	evConnected      = expvar.NewInt("connected") // 0/1
	evInputs         = expvar.NewInt("panel_inputs")
	evDispatched     = expvar.NewInt("events_dispatched")
	evLayouts        = expvar.NewInt("layouts_applied")
	evReconnects     = expvar.NewInt("reconnects")
	evLastInputMS    = expvar.NewInt("last_input_ms")
	evDeviceSelected = expvar.NewString("input_device")
)

type statusResponse struct {
	Device       string `json:"device"`
	Connected    bool   `json:"connected"`
	Sessions     int64  `json:"sessions"`
	Reconnects   int64  `json:"reconnects"`
	Inputs       int64  `json:"inputs"`
	Dispatched   int64  `json:"dispatched"`
	Layouts      int64  `json:"layouts"`
	LastInputAgo string `json:"lastInputAgo,omitempty"`
}

func currentStatus(now time.Time) statusResponse {
	s := statusResponse{
		Device:     evDeviceSelected.Value(),
		Connected:  evConnected.Value() == 1,
		Sessions:   evSessions.Value(),
		Reconnects: evReconnects.Value(),
		Inputs:     evInputs.Value(),
		Dispatched: evDispatched.Value(),
		Layouts:    evLayouts.Value(),
	}
	if ms := evLastInputMS.Value(); ms > 0 {
		s.LastInputAgo = now.Sub(time.UnixMilli(ms)).Truncate(time.Millisecond).String()
	}
	return s
}

func handleStatusGin(c *gin.Context) {
	c.JSON(http.StatusOK, currentStatus(time.Now()))
}

func newStatusRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/status", handleStatusGin)
	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	return r
}

// serveStatus runs the status endpoint on addr until ctx is done.
func serveStatus(ctx context.Context, addr string, log *slog.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newStatusRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("status endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn("status endpoint stopped", "err", err)
	}
}
