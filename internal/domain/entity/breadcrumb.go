package entity

// Diagnostic breadcrumbs are best-effort operational records. Each kind is a
// single document overwritten on every occurrence; none of them is
// correctness-bearing and writing them must never fail the caller.

// LastHit is the heartbeat breadcrumb recorded for every webhook delivery.
type LastHit struct {
	At     int64  `json:"at"`
	Route  string `json:"route"`
	Method string `json:"method"`
}

// LastUpdate summarizes the most recently parsed update.
type LastUpdate struct {
	At         int64    `json:"at"`
	HasMessage bool     `json:"hasMessage"`
	Keys       []string `json:"keys"`
}

// LastError records the most recent payload that could not be parsed.
type LastError struct {
	At     int64  `json:"at"`
	Reason string `json:"reason"`
	RawLen int    `json:"rawLen"`
}

// LastException records the most recent processing failure.
type LastException struct {
	At    int64  `json:"at"`
	Error string `json:"error"`
}

// LastEcho captures an arbitrary inbound request on the echo endpoint, used
// to inspect what the chat platform actually sends.
type LastEcho struct {
	At        int64             `json:"at"`
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	RawLen    int               `json:"rawLen"`
	HasParsed bool              `json:"hasParsed"`
	Text      string            `json:"text,omitempty"`
}
