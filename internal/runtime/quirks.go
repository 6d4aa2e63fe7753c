package runtime

import (
	"strings"

	"github.com/aretw0/stagehand/pkg/ports"
)

// AndroidQ is the API level whose activity manager replays resume/pause for
// containers sitting under a transparent one.
// See https://issuetracker.google.com/issues/185693011.
const AndroidQ = 29

// SuppressionRule decides whether a resume or pause for current is spurious given
// the registry top observed when the signal arrived. top may be nil.
type SuppressionRule func(top, current ports.Container) bool

// SuppressSpuriousSignals ignores signals for a container while a different,
// transparent top container is pausing.
func SuppressSpuriousSignals(top, current ports.Container) bool {
	return top != nil &&
		top.UniqueID() != current.UniqueID() &&
		!top.IsOpaque() &&
		top.IsPausing()
}

// HostInfo identifies the host platform delivering lifecycle signals.
type HostInfo struct {
	Platform string `json:"platform" yaml:"platform" mapstructure:"platform"`
	APILevel int    `json:"api_level" yaml:"api_level" mapstructure:"api_level"`
}

// RuleForHost returns the suppression rule the host needs, or nil.
func RuleForHost(h HostInfo) SuppressionRule {
	if strings.EqualFold(h.Platform, "android") && h.APILevel == AndroidQ {
		return SuppressSpuriousSignals
	}
	return nil
}
