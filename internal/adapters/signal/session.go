package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/callsync/callsync/internal/core"
	"github.com/callsync/callsync/internal/domain"
)

// Messages the client keys retry behavior off; keep in sync with the web app.
const (
	msgNotFound = "Session not found"
	msgExpired  = "Session has expired. Cannot rejoin."
)

func rejectionMessage(err error) string {
	if errors.Is(err, domain.ErrSessionExpired) {
		return msgExpired
	}
	return msgNotFound
}

func (ctl *Controller) handleJoin(c *wsConn, data []byte) {
	var p struct {
		Type      string           `json:"type"`
		SessionID domain.SessionID `json:"sessionId"`
		UserID    domain.UserID    `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendJSON(c, core.NewErrorEvent("bad payload"))
		return
	}
	if p.SessionID == "" || p.UserID == "" {
		ctl.sendJSON(c, core.NewErrorEvent("sessionId and userId required"))
		return
	}

	if err := ctl.Engine.Join(p.SessionID, p.UserID, c); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("session", string(p.SessionID)).
			Str("user", string(p.UserID)).Msg("join rejected")
		ctl.sendJSON(c, core.NewErrorEvent(rejectionMessage(err)))
		return
	}

	c.sid = p.SessionID
	c.uid = p.UserID
	log.Info().Str("module", "signal").Str("session", string(p.SessionID)).
		Str("user", string(p.UserID)).Msg("join")
}

// handleRelay decodes just enough envelope to route; the negotiation body is
// forwarded verbatim as raw JSON.
func (ctl *Controller) handleRelay(c *wsConn, kind string, data []byte) {
	var p struct {
		Type      string           `json:"type"`
		SessionID domain.SessionID `json:"sessionId"`
		Offer     json.RawMessage  `json:"offer"`
		Answer    json.RawMessage  `json:"answer"`
		Candidate json.RawMessage  `json:"candidate"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad relay payload")
		ctl.sendJSON(c, core.NewErrorEvent("bad payload"))
		return
	}

	var payload json.RawMessage
	signalKind := core.SignalKind(kind)
	switch signalKind {
	case core.SignalOffer:
		payload = p.Offer
	case core.SignalAnswer:
		payload = p.Answer
	case core.SignalCandidate:
		payload = p.Candidate
	}

	if err := ctl.Engine.Relay(p.SessionID, c.uid, signalKind, payload); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("session", string(p.SessionID)).
			Str("kind", kind).Msg("relay rejected")
		ctl.sendJSON(c, core.NewErrorEvent(rejectionMessage(err)))
	}
}

func (ctl *Controller) handleEnd(c *wsConn, data []byte) {
	var p struct {
		Type      string           `json:"type"`
		SessionID domain.SessionID `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad end payload")
		return
	}
	log.Info().Str("module", "signal").Str("session", string(p.SessionID)).
		Str("user", string(c.uid)).Msg("end call")
	ctl.Engine.End(p.SessionID, domain.ReasonManual)
}

func (ctl *Controller) handlePing(c *wsConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(c, resp)
}
