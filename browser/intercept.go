package browser

import (
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
)

// Response interception hygiene. Bodies arrive asynchronously after the
// response event, so a naive buffer lets a previous document's late arrivals
// bleed into the next one's batch. Every pending body is stamped with the
// generation current at event time; Navigate advances the generation, which
// both empties the buffer and invalidates whatever is still in flight.

// apiPathHints narrow interception to endpoints that carry the current
// document's own data: detail-page sections, listing payloads, host and
// profile lookups. Search-feed endpoints match none of them.
var apiPathHints = []string{"pdp", "listing", "user", "host"}

// interceptable reports whether a network response is worth capturing.
func interceptable(resType network.ResourceType, mime, url string) bool {
	if resType != network.ResourceTypeXHR && resType != network.ResourceTypeFetch {
		return false
	}
	if !strings.Contains(mime, "json") {
		return false
	}
	lower := strings.ToLower(url)
	if !strings.Contains(lower, "/api/") {
		return false
	}
	for _, hint := range apiPathHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// responseBuffer accumulates intercepted bodies for the current document only.
type responseBuffer struct {
	mu     sync.Mutex
	gen    uint64
	bodies [][]byte
}

// generation returns the stamp to attach to a pending body fetch.
func (b *responseBuffer) generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// reset discards buffered bodies and invalidates every pending stamp.
func (b *responseBuffer) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.bodies = nil
}

// add appends a body unless the document it belongs to is already gone.
func (b *responseBuffer) add(gen uint64, body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	b.bodies = append(b.bodies, body)
}

// drain returns the buffered bodies and empties the buffer.
func (b *responseBuffer) drain() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.bodies
	b.bodies = nil
	return out
}
