package beacon

import (
	"regexp"
	"strings"
	"time"

	"github.com/presencelab/beacon-bridge/internal/domain/entity"
)

var (
	offPattern = regexp.MustCompile(`(?i)^/off\b`)
	onPattern  = regexp.MustCompile(`(?i)^/on\b`)
)

// Interpret computes the beacon state a normalized message demands. It is
// pure: persistence is the pipeline's responsibility.
//
// Commands are matched case-insensitively as a leading token:
//
//	/off          -> off, expiry set to now (immediately lapsed)
//	/on [dur]     -> on until now+dur; dur defaults to defaultDur
//	anything else -> on until now+defaultDur
//
// The last branch is deliberate policy, not a parsing fallback: any activity
// on the channel counts as presence and re-arms the beacon.
func Interpret(msg *entity.InboundMessage, now time.Time, defaultDur time.Duration) entity.BeaconRecord {
	nowMs := now.UnixMilli()

	last := entity.LastMessage{
		From:       msg.From,
		Body:       msg.Text,
		ReceivedAt: nowMs,
	}
	if last.Body == "" {
		last.Body = entity.NonTextBody
	}

	switch {
	case offPattern.MatchString(msg.Text):
		return entity.BeaconRecord{
			On:          false,
			ExpiresAt:   nowMs,
			LastMessage: last,
		}
	case onPattern.MatchString(msg.Text):
		rest := strings.TrimSpace(onPattern.ReplaceAllString(msg.Text, ""))
		dur := ParseDuration(rest, defaultDur)
		return entity.BeaconRecord{
			On:          true,
			ExpiresAt:   now.Add(dur).UnixMilli(),
			LastMessage: last,
		}
	default:
		return entity.BeaconRecord{
			On:          true,
			ExpiresAt:   now.Add(defaultDur).UnixMilli(),
			LastMessage: last,
		}
	}
}
