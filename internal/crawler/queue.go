// internal/crawler/queue.go
package crawler

import (
	"sync"
)

// Request labels. The label selects which handler processes a dequeued URL;
// the set is closed.
const (
	LabelStart  = "start"
	LabelSecond = "second"
)

// Request is one URL waiting to be crawled.
type Request struct {
	URL   string
	Label string
}

// RequestQueue is an in-memory FIFO crawl frontier with per-URL
// uniqueness. Deduplication lives here, not in the pagination planner: a
// URL is accepted at most once per run no matter how many pages plan it.
type RequestQueue struct {
	mu      sync.Mutex
	pending []Request
	seen    map[string]bool
}

// NewRequestQueue creates an empty queue.
func NewRequestQueue() *RequestQueue {
	return &RequestQueue{seen: make(map[string]bool)}
}

// Enqueue adds a URL under a label. Returns false when the URL was already
// enqueued this run.
func (q *RequestQueue) Enqueue(url, label string) bool {
	if url == "" {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.seen[url] {
		return false
	}
	q.seen[url] = true
	q.pending = append(q.pending, Request{URL: url, Label: label})
	return true
}

// Dequeue pops the oldest pending request. The second return is false when
// the queue is drained.
func (q *RequestQueue) Dequeue() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return Request{}, false
	}
	req := q.pending[0]
	q.pending = q.pending[1:]
	return req, true
}

// Len returns the number of pending requests.
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
