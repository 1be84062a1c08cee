// Package wire owns the serialized item envelope: the single JSON string
// stored under each backend key.
//
//	{"data":"<base64 payload>","expiry":<ms since epoch>}
//
// The expiry field is omitted for entries that never expire. Anything that
// does not decode as this shape is a foreign value; callers decide how to
// degrade (the store surfaces foreign values unchanged, Expiry reports nil).
package wire

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrMalformed marks bytes that are not a valid envelope.
var ErrMalformed = errors.New("localstore: malformed envelope")

type envelope struct {
	Data   []byte `json:"data"`
	Expiry *int64 `json:"expiry,omitempty"`
}

// Encode wraps payload and an optional absolute expiry into envelope bytes.
// Expiry precision is milliseconds.
func Encode(payload []byte, expiry *time.Time) []byte {
	if payload == nil {
		payload = []byte{}
	}
	env := envelope{Data: payload}
	if expiry != nil {
		ms := expiry.UnixMilli()
		env.Expiry = &ms
	}
	// marshaling []byte and *int64 cannot fail
	b, _ := json.Marshal(env)
	return b
}

// Decode splits envelope bytes back into payload and expiry. A nil expiry
// means the entry never expires. Returns ErrMalformed for anything that is
// not an envelope, including JSON objects without a data field.
func Decode(b []byte) (payload []byte, expiry *time.Time, err error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, nil, ErrMalformed
	}
	if env.Data == nil {
		return nil, nil, ErrMalformed
	}
	if env.Expiry != nil {
		t := time.UnixMilli(*env.Expiry)
		expiry = &t
	}
	return env.Data, expiry, nil
}
