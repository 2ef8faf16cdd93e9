package core

// Frame is a raw JSON payload pushed over a signaling transport.
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// SignalKind discriminates the connection-negotiation messages the relay
// carries. Payload bodies are opaque to the core.
type SignalKind string

const (
	SignalOffer     SignalKind = "webrtc_offer"
	SignalAnswer    SignalKind = "webrtc_answer"
	SignalCandidate SignalKind = "webrtc_ice_candidate"
)
