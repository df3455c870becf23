package scores

import "strings"

// Classification is the coarse state of a match derived from its free-text
// status label.
type Classification int

const (
	Unknown Classification = iota
	Scheduled
	Live
	Finished
)

func (c Classification) String() string {
	switch c {
	case Scheduled:
		return "scheduled"
	case Live:
		return "live"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Phrases are matched as substrings, tokens only as whole words.
// Order matters: "finished after extra time" is finished, not live.
var (
	scheduledPhrases = []string{"not started", "scheduled", "agend", "postponed", "time to be defined"}
	scheduledTokens  = []string{"ns", "tbd"}

	finishedPhrases = []string{"finished", "encerrado", "full time", "after extra time", "after penalties", "final"}
	finishedTokens  = []string{"ft", "aet", "ap", "fim"}

	livePhrases = []string{"ao vivo", "in play", "live", "half time", "intervalo", "1st half", "2nd half", "extra time", "penalties", "em andamento"}
	liveTokens  = []string{"1h", "2h", "ht", "et", "p", "bt", "pen"}
)

// Classify maps a status label to a Classification.
// An empty label means the match has not been played yet.
func Classify(status string) Classification {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return Scheduled
	}
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	switch {
	case matches(s, words, scheduledPhrases, scheduledTokens):
		return Scheduled
	case matches(s, words, finishedPhrases, finishedTokens):
		return Finished
	case matches(s, words, livePhrases, liveTokens):
		return Live
	}
	return Unknown
}

func matches(s string, words, phrases, tokens []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	for _, w := range words {
		for _, t := range tokens {
			if w == t {
				return true
			}
		}
	}
	return false
}
