package service

import (
	"context"
	"sync"

	"github.com/alebedev/helpboard/internal/board/domain"
	commonerrors "github.com/alebedev/helpboard/internal/common/errors"
	"github.com/alebedev/helpboard/internal/common/logger"
	prommetrics "github.com/alebedev/helpboard/internal/common/prometheus"
	"github.com/alebedev/helpboard/internal/notify"
)

// Store persists the full request snapshot.
type Store interface {
	Save(requests []domain.Request) error
}

// Publisher fans a board event out to subscribers. Implementations must not
// block; a slow subscriber is the hub's problem, not the board's.
type Publisher interface {
	Publish(event notify.Event)
}

type SolutionEventPayload struct {
	RequestID int             `json:"request_id"`
	Solution  domain.Solution `json:"solution"`
}

type DeleteEventPayload struct {
	RequestID int `json:"request_id"`
}

// Board owns the ordered request collection. Every mutation holds the mutex
// across the read-modify-persist sequence, so id assignment and the append
// are a single critical section. Saves happen under the lock; a failed save
// rolls the in-memory change back and the mutation reports failure.
type Board struct {
	mu        sync.Mutex
	requests  []domain.Request
	store     Store
	publisher Publisher
	log       *logger.Logger
}

func New(requests []domain.Request, store Store, publisher Publisher, log *logger.Logger) *Board {
	return &Board{
		requests:  requests,
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

func (b *Board) Create(ctx context.Context, author, title, description string) (domain.Request, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	nextID := 0
	for _, r := range b.requests {
		if r.ID >= nextID {
			nextID = r.ID + 1
		}
	}

	request := domain.Request{
		ID:          nextID,
		Title:       title,
		Description: description,
		Author:      author,
		Solutions:   []domain.Solution{},
	}

	b.requests = append(b.requests, request)

	if err := b.store.Save(b.requests); err != nil {
		b.requests = b.requests[:len(b.requests)-1]
		prommetrics.PersistenceFailuresTotal.WithLabelValues("requests").Inc()
		b.log.WithFields(ctx, logger.Fields{
			"author": author,
			"action": "request_create_save_failed",
		}).Errorf("request create failed: save error: %v", err)
		return domain.Request{}, commonerrors.ErrPersistenceFailure.WithCause(err)
	}

	prommetrics.BoardMutationsTotal.WithLabelValues("create_request").Inc()
	b.log.WithFields(ctx, logger.Fields{
		"request_id": request.ID,
		"author":     author,
		"action":     "request_created",
	}).Info("request created")

	b.publisher.Publish(notify.Event{Type: notify.TypeNewRequest, Payload: request.Clone()})

	return request.Clone(), nil
}

func (b *Board) AppendSolution(ctx context.Context, requestID int, author, text string) (domain.Solution, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(requestID)
	if idx < 0 {
		b.log.WithFields(ctx, logger.Fields{
			"request_id": requestID,
			"author":     author,
			"action":     "solution_request_not_found",
		}).Warn("solution failed: request not found")
		return domain.Solution{}, commonerrors.ErrRequestNotFound
	}

	solution := domain.Solution{Author: author, Text: text}
	b.requests[idx].Solutions = append(b.requests[idx].Solutions, solution)

	if err := b.store.Save(b.requests); err != nil {
		solutions := b.requests[idx].Solutions
		b.requests[idx].Solutions = solutions[:len(solutions)-1]
		prommetrics.PersistenceFailuresTotal.WithLabelValues("requests").Inc()
		b.log.WithFields(ctx, logger.Fields{
			"request_id": requestID,
			"author":     author,
			"action":     "solution_save_failed",
		}).Errorf("solution failed: save error: %v", err)
		return domain.Solution{}, commonerrors.ErrPersistenceFailure.WithCause(err)
	}

	prommetrics.BoardMutationsTotal.WithLabelValues("append_solution").Inc()
	b.log.WithFields(ctx, logger.Fields{
		"request_id": requestID,
		"author":     author,
		"action":     "solution_appended",
	}).Info("solution appended")

	b.publisher.Publish(notify.Event{
		Type:    notify.TypeNewSolution,
		Payload: SolutionEventPayload{RequestID: requestID, Solution: solution},
	})

	return solution, nil
}

func (b *Board) Delete(ctx context.Context, requestID int, requester string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(requestID)
	if idx < 0 {
		b.log.WithFields(ctx, logger.Fields{
			"request_id": requestID,
			"requester":  requester,
			"action":     "delete_request_not_found",
		}).Warn("delete failed: request not found")
		return commonerrors.ErrRequestNotFound
	}

	if b.requests[idx].Author != requester {
		b.log.WithFields(ctx, logger.Fields{
			"request_id": requestID,
			"requester":  requester,
			"author":     b.requests[idx].Author,
			"action":     "delete_forbidden",
		}).Warn("delete failed: requester is not the author")
		return commonerrors.ErrNotRequestAuthor
	}

	removed := b.requests[idx]
	b.requests = append(b.requests[:idx], b.requests[idx+1:]...)

	if err := b.store.Save(b.requests); err != nil {
		b.requests = append(b.requests[:idx], append([]domain.Request{removed}, b.requests[idx:]...)...)
		prommetrics.PersistenceFailuresTotal.WithLabelValues("requests").Inc()
		b.log.WithFields(ctx, logger.Fields{
			"request_id": requestID,
			"requester":  requester,
			"action":     "delete_save_failed",
		}).Errorf("delete failed: save error: %v", err)
		return commonerrors.ErrPersistenceFailure.WithCause(err)
	}

	prommetrics.BoardMutationsTotal.WithLabelValues("delete_request").Inc()
	b.log.WithFields(ctx, logger.Fields{
		"request_id": requestID,
		"requester":  requester,
		"action":     "request_deleted",
	}).Info("request deleted")

	b.publisher.Publish(notify.Event{
		Type:    notify.TypeDeleteRequest,
		Payload: DeleteEventPayload{RequestID: requestID},
	})

	return nil
}

func (b *Board) ListAll() []domain.Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Request, 0, len(b.requests))
	for _, r := range b.requests {
		out = append(out, r.Clone())
	}
	return out
}

func (b *Board) ListByAuthor(username string) []domain.Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Request, 0)
	for _, r := range b.requests {
		if r.Author == username {
			out = append(out, r.Clone())
		}
	}
	return out
}

// indexOf returns the position of the first request with the given id.
// Caller must hold the mutex.
func (b *Board) indexOf(requestID int) int {
	for i, r := range b.requests {
		if r.ID == requestID {
			return i
		}
	}
	return -1
}
