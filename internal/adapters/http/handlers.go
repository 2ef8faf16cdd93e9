package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/callsync/callsync/internal/app"
	"github.com/callsync/callsync/internal/config"
	"github.com/callsync/callsync/internal/domain"
)

type Handlers struct {
	Engine *app.Engine
	Cfg    *config.Config
}

type createSessionRequest struct {
	CallerID      domain.UserID `json:"callerId"`
	CalleeID      domain.UserID `json:"calleeId"`
	DurationLimit int           `json:"durationLimit"`
}

type createSessionResponse struct {
	SessionID     domain.SessionID `json:"sessionId"`
	CallerID      domain.UserID    `json:"callerId"`
	CalleeID      domain.UserID    `json:"calleeId"`
	DurationLimit int              `json:"durationLimit"`
}

func (h *Handlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.CallerID == "" || req.CalleeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "callerId and calleeId required"})
		return
	}
	if req.DurationLimit == 0 {
		req.DurationLimit = h.Cfg.DefaultDuration
	}

	snap := h.Engine.CreateSession(req.CallerID, req.CalleeID, req.DurationLimit)
	log.Info().Str("module", "adapters.http").Str("session", string(snap.ID)).
		Int("duration_limit", snap.DurationLimit).Msg("session created")

	c.JSON(http.StatusOK, createSessionResponse{
		SessionID:     snap.ID,
		CallerID:      snap.CallerID,
		CalleeID:      snap.CalleeID,
		DurationLimit: snap.DurationLimit,
	})
}

func (h *Handlers) GetSession(c *gin.Context) {
	id := domain.SessionID(c.Param("sessionId"))
	snap, ok := h.Engine.GetSession(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             snap.ID,
		"caller_id":      snap.CallerID,
		"callee_id":      snap.CalleeID,
		"duration_limit": snap.DurationLimit,
		"status":         snap.Status,
		"time_remaining": h.Engine.TimeRemaining(snap),
		"start_time":     snap.StartTime,
	})
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"activeSessions": h.Engine.ActiveSessions(),
	})
}

// TurnConfig hands out the ICE server list: public STUN always, the
// configured TURN relay over udp and tcp when present.
func (h *Handlers) TurnConfig(c *gin.Context) {
	iceServers := []webrtc.ICEServer{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
		{URLs: []string{"stun:stun1.l.google.com:19302"}},
		{URLs: []string{"stun:stun2.l.google.com:19302"}},
	}

	if h.Cfg.TurnURL != "" {
		iceServers = append(iceServers,
			webrtc.ICEServer{
				URLs:       []string{"turn:" + h.Cfg.TurnURL + "?transport=udp"},
				Username:   h.Cfg.TurnUsername,
				Credential: h.Cfg.TurnPassword,
			},
			webrtc.ICEServer{
				URLs:       []string{"turn:" + h.Cfg.TurnURL + "?transport=tcp"},
				Username:   h.Cfg.TurnUsername,
				Credential: h.Cfg.TurnPassword,
			},
		)
	}

	c.JSON(http.StatusOK, gin.H{"iceServers": iceServers})
}
