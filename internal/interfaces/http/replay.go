package httpinterface

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// replayGuard remembers the authenticated requests whose timestamp is still
// within the accepted skew, so that each signed request is served once.
// Requests are identified by caller and signed payload rather than by
// signature, since several encodings of a signature recover the same caller.
type replayGuard struct {
	lock      *sync.Mutex
	seen      map[common.Hash]time.Time
	lastPrune time.Time
	ttl       time.Duration
}

func newReplayGuard(maxSkew time.Duration) *replayGuard {
	return &replayGuard{
		lock: &sync.Mutex{},
		seen: make(map[common.Hash]time.Time),
		// Timestamps have a one second resolution.
		ttl: maxSkew + time.Second,
	}
}

// markSeen records the request and returns false if it was already
// recorded and not yet expired.
func (g *replayGuard) markSeen(
	caller common.Address, payload []byte, timestamp, now time.Time,
) bool {
	key := crypto.Keccak256Hash(caller.Bytes(), payload)

	g.lock.Lock()
	defer g.lock.Unlock()

	if now.Sub(g.lastPrune) >= g.ttl {
		for k, expiry := range g.seen {
			if !now.Before(expiry) {
				delete(g.seen, k)
			}
		}
		g.lastPrune = now
	}

	if expiry, ok := g.seen[key]; ok && now.Before(expiry) {
		return false
	}
	g.seen[key] = timestamp.Add(g.ttl)
	return true
}

func (g *replayGuard) size() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return len(g.seen)
}
