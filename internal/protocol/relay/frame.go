package relay

import "encoding/json"

// Frame types exchanged with the gateway.
const (
	frameAuth    = "auth"
	frameEvent   = "event"
	frameCommand = "command"
	frameResult  = "result"
)

// Gateway command names.
const (
	cmdPairingCode = "pairing_code"
	cmdNotify      = "notify"
	cmdClose       = "close"
)

// Event kinds on the wire.
const (
	wireQR          = "qr"
	wireOpen        = "open"
	wireClose       = "close"
	wireCredentials = "credentials"
)

// frame is the envelope for every message on the relay connection.
type frame struct {
	Type string `json:"type"`

	// Auth frame fields.
	Creds []byte `json:"creds,omitempty"`

	// Event frame fields.
	Event *eventBody `json:"event,omitempty"`

	// Command/result frame fields.
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name,omitempty"`
	Args   json.RawMessage `json:"args,omitempty"`
	Code   string          `json:"code,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// eventBody carries one connection event from the gateway.
type eventBody struct {
	Kind        string `json:"kind"`
	QR          string `json:"qr,omitempty"`
	Identity    string `json:"identity,omitempty"`
	Credentials []byte `json:"credentials,omitempty"`
}

// pairingCodeArgs is the argument body for the pairing_code command.
type pairingCodeArgs struct {
	Number string `json:"number"`
}

// notifyArgs is the argument body for the notify command.
type notifyArgs struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}
