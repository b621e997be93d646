package hub

import (
	"arcade/domain"
	"encoding/json"
	"errors"
)

// Client commands.
const (
	CmdStart        = "start"
	CmdRestart      = "restart"
	CmdEnd          = "end"
	CmdWhack        = "whack"
	CmdSelect       = "select"
	CmdSubmit       = "submit"
	CmdSubmitByName = "submitByName"
)

// Server messages.
const (
	MsgSnapshot = "snapshot"
	MsgHit      = "hit"
	MsgResult   = "result"
	MsgError    = "error"
)

// Error codes sent in MsgError frames.
const (
	ErrBadMessageFormatStr = "bad-message-format"
	ErrUnknownCommandStr   = "unknown-command"
	ErrRateLimitedStr      = "rate-limited"
	ErrReplacedStr         = "replaced"
	ErrServerShutdownStr   = "server-shutdown"
	ErrUnknownStr          = "unknown-error"
)

var errMissingPayload = errors.New("missing-payload")

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type whackPayload struct {
	InstanceID string `json:"instanceId"`
}

type selectPayload struct {
	StationID string `json:"stationId"`
}

type submitByNamePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type errorPayload struct {
	Code string `json:"code"`
}

func decodePayload(msg inbound, v any) error {
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return errMissingPayload
	}
	return json.Unmarshal(msg.Payload, v)
}

var sessionErrors = []error{
	domain.ErrEmptyCatalog,
	domain.ErrNotEnoughStations,
	domain.ErrSessionRunning,
	domain.ErrSessionNotRunning,
	domain.ErrUnknownStation,
	domain.ErrSubmissionInFlight,
	domain.ErrInvalidGameSettings,
}

// errorCode maps a session error to the code the client sees.
func errorCode(err error) string {
	for _, target := range sessionErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return ErrUnknownStr
}
