package entity

import "time"

// NonTextBody is stored in place of an empty message body so consumers can
// tell "no text" apart from an empty string.
const NonTextBody = "[non-text]"

// LastMessage is the summary of the message that last touched the beacon.
// Field names match the store layout consumed by existing pollers.
type LastMessage struct {
	From       string `json:"from"`
	Body       string `json:"body"`
	ReceivedAt int64  `json:"receivedAt"`
}

// BeaconRecord is the single shared presence record. It is overwritten in
// place on every actionable inbound message; there is no history and no
// versioning.
//
// Expiry is lazy: nothing clears the record when ExpiresAt passes, so any
// reader must compare ExpiresAt against the current time instead of trusting
// the stored On flag alone.
type BeaconRecord struct {
	On          bool        `json:"on"`
	ExpiresAt   int64       `json:"expiresAt"`
	LastMessage LastMessage `json:"lastMessage"`
}

// EffectiveOn reports whether the beacon is on as of now, applying lazy
// expiry.
func (b BeaconRecord) EffectiveOn(now time.Time) bool {
	return b.On && now.UnixMilli() < b.ExpiresAt
}
