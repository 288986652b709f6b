// Async request worker — entities never block on the network. They submit a
// correlation-id-stamped request; the worker resolves it off-tick and posts a
// typed response that the world loop drains at the start of the next tick.
// Stale responses (arriving after the entity moved on) are detected by id and
// discarded by the consumer. A response is ALWAYS posted, even on timeout or
// panic-free failure, so in-flight flags can be cleared deterministically.
package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RequestTimeout bounds every LLM call; on expiry the request fails and the
// failure response still flows back to the entity.
const RequestTimeout = 8 * time.Second

// RequestKind distinguishes thought generation from dialogue replies.
type RequestKind uint8

const (
	KindThought RequestKind = iota
	KindReply
)

// Request is one unit of asynchronous LLM work.
type Request struct {
	ID       string // correlation id, uuid
	EntityID string
	Kind     RequestKind

	// Thought requests.
	Context ThoughtContext

	// Reply requests.
	System  string
	Prompt  string
	History []Message
}

// NewRequestID mints a correlation id.
func NewRequestID() string {
	return uuid.NewString()
}

// Response carries the outcome back to the tick loop.
type Response struct {
	ID       string
	EntityID string
	Kind     RequestKind

	Thought Thought // thought requests
	Text    string  // reply requests
	Err     error
}

// Worker resolves requests on background goroutines.
type Worker struct {
	client    *Client
	requests  chan Request
	responses chan Response
}

// NewWorker creates a worker. The client may be nil (disabled); submissions
// then fail fast with an error response.
func NewWorker(client *Client) *Worker {
	return &Worker{
		client:    client,
		requests:  make(chan Request, 32),
		responses: make(chan Response, 32),
	}
}

// Start launches n resolver goroutines that exit when ctx is done.
func (w *Worker) Start(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		go w.run(ctx)
	}
}

// Submit enqueues a request without blocking. Returns false if the queue is
// full; callers treat that like any other transient failure and retry on
// their next scheduled interval.
func (w *Worker) Submit(req Request) bool {
	select {
	case w.requests <- req:
		return true
	default:
		slog.Debug("llm worker queue full, dropping request", "entity", req.EntityID)
		return false
	}
}

// Drain returns all responses ready right now, never blocking.
func (w *Worker) Drain() []Response {
	var out []Response
	for {
		select {
		case r := <-w.responses:
			out = append(out, r)
		default:
			return out
		}
	}
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.requests:
			w.post(w.resolve(ctx, req))
		}
	}
}

func (w *Worker) resolve(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID, EntityID: req.EntityID, Kind: req.Kind}

	callCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	switch req.Kind {
	case KindThought:
		resp.Thought, resp.Err = GenerateThought(callCtx, w.client, req.Context)
	case KindReply:
		resp.Text, resp.Err = GenerateSingleResponse(callCtx, w.client, req.System, req.Prompt, req.History)
	}
	if resp.Err != nil {
		slog.Debug("llm request failed", "entity", req.EntityID, "error", resp.Err)
	}
	return resp
}

// post delivers a response. If the buffer is full the oldest pending response
// is sacrificed; failure responses must never be lost silently while an
// entity waits on its flag.
func (w *Worker) post(resp Response) {
	for {
		select {
		case w.responses <- resp:
			return
		default:
			select {
			case <-w.responses:
			default:
			}
		}
	}
}
