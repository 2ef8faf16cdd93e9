package domain

// EndReason tags a terminal transition with what caused it.
type EndReason string

const (
	ReasonManual  EndReason = "manual"
	ReasonAllLeft EndReason = "all_left"
	ReasonTimeout EndReason = "timeout"
)

// FinalStatus maps a reason to the terminal status it produces.
func (r EndReason) FinalStatus() Status {
	if r == ReasonTimeout {
		return StatusExpired
	}
	return StatusEnded
}

// Message is the user-facing explanation sent with force_end_call.
func (r EndReason) Message() string {
	switch r {
	case ReasonTimeout:
		return "⏰ Session time limit reached. Call ended."
	case ReasonAllLeft:
		return "All participants left. Call ended."
	default:
		return "Call ended by participant."
	}
}
