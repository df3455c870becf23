// Package cachestatus renders the Cache-Status response header.
package cachestatus

import (
	"fmt"

	"github.com/KaueAmbrosio/WebSiteEsporte/cache"
)

// Name identifies this cache in the header.
const Name = "Scoreboard"

type Status string

const (
	StatusHit = "hit"
	StatusFwd = "fwd"
)

type FwdReason string

const (
	// The cache did not contain any matches for the request.
	FwdUriMiss FwdReason = "uri-miss"

	// The cache contained matches, but they were stale.
	FwdStale FwdReason = "stale"
)

type CacheStatus struct {
	status    Status
	detail    string
	fwdReason FwdReason
}

func (cs *CacheStatus) Hit() {
	cs.status = StatusHit
	cs.fwdReason = ""
}

func (cs *CacheStatus) Forward(reason FwdReason) {
	cs.status = StatusFwd
	cs.fwdReason = reason
}

func (cs *CacheStatus) Detail(detail string) {
	cs.detail = detail
}

// IsHit reports whether the response was served without contacting upstream.
func (cs *CacheStatus) IsHit() bool {
	return cs.status == StatusHit
}

func (cs *CacheStatus) FwdReason() FwdReason {
	return cs.fwdReason
}

func (cs *CacheStatus) String() string {
	status := fmt.Sprintf("%s; %s", Name, cs.status)
	if cs.status == StatusFwd && cs.fwdReason != "" {
		status = fmt.Sprintf("%s=%s", status, cs.fwdReason)
	}
	if cs.detail != "" {
		status = status + "; detail=" + cs.detail
	}
	return status
}

// FromCache maps the outcome of a cache read to a header value.
func FromCache(s cache.Status) CacheStatus {
	cs := CacheStatus{}
	switch s {
	case cache.StatusHit:
		cs.Hit()
	case cache.StatusStale:
		cs.Hit()
		cs.Detail("stale")
	case cache.StatusRefreshed:
		cs.Forward(FwdStale)
	case cache.StatusDegraded:
		// upstream was asked and failed; the stale copy was served
		cs.Forward(FwdStale)
		cs.Detail("degraded")
	default:
		cs.Forward(FwdUriMiss)
	}
	return cs
}
