package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
	"github.com/quizlight/recall-sync-engine/internal/core/scheduler"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 (again) and 4 (easy)")
	ErrInvalidMode   = errors.New("unknown session mode")
)

// Enqueuer is the narrow slice of the mutation queue the services depend
// on. Handing an operation over never blocks on delivery.
type Enqueuer interface {
	Enqueue(ctx context.Context, op *domain.SyncOperation) error
}

// ReviewService orchestrates one review event end to end: schedule engine,
// local persistence, sync enqueue, in that order. Local persistence is
// synchronous and must succeed before anything is enqueued, so the learner
// sees updated scheduling immediately and fully offline.
type ReviewService struct {
	cards  domain.CardRepository
	events domain.ReviewEventRepository
	engine *scheduler.Engine
	queue  Enqueuer
	now    func() time.Time
}

func NewReviewService(cards domain.CardRepository, events domain.ReviewEventRepository, engine *scheduler.Engine, queue Enqueuer, now func() time.Time) *ReviewService {
	if now == nil {
		now = time.Now
	}
	return &ReviewService{
		cards:  cards,
		events: events,
		engine: engine,
		queue:  queue,
		now:    now,
	}
}

// RecordReview applies a rating to a card. In normal mode the new schedule
// state is computed and persisted before returning; practice and cram are
// rehearsal, recorded as history without touching the schedule state. The
// returned state is whatever the card is now scheduled with.
func (s *ReviewService) RecordReview(ctx context.Context, cardID string, rating scheduler.Rating, mode domain.SessionMode) (domain.ScheduleState, error) {
	if !rating.Valid() {
		return domain.ScheduleState{}, ErrInvalidRating
	}
	if !mode.Valid() {
		return domain.ScheduleState{}, ErrInvalidMode
	}

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return domain.ScheduleState{}, err
	}

	now := s.now()
	before := card.ScheduleState
	after := before

	if mode == domain.ModeNormal {
		after = s.engine.Apply(before, rating, now)

		if err := card.ApplySchedule(after, now); err != nil {
			return domain.ScheduleState{}, err
		}
		if err := s.cards.Update(ctx, card); err != nil {
			return domain.ScheduleState{}, fmt.Errorf("%w: update card %s: %v", domain.ErrStorage, cardID, err)
		}
	}

	event := domain.NewReviewEvent(cardID, int(rating), mode, before, after, now)
	if err := s.events.Append(ctx, event); err != nil {
		if mode == domain.ModeNormal {
			// The card was already rescheduled; restore it so a failed
			// review leaves no partial local state behind.
			card.ScheduleState = before
			if rbErr := s.cards.Update(ctx, card); rbErr != nil {
				log.Printf("[Review] Failed to restore card %s after event append failure: %v", cardID, rbErr)
			}
		}
		return domain.ScheduleState{}, fmt.Errorf("%w: append review event for card %s: %v", domain.ErrStorage, cardID, err)
	}

	s.enqueueSync(ctx, card, event, mode, now)

	return after, nil
}

// enqueueSync hands the review's remote mutations to the queue. The review
// is already durable locally at this point; a log write failure here loses
// only the remote replication, so it is reported, not propagated.
func (s *ReviewService) enqueueSync(ctx context.Context, card *domain.Card, event *domain.ReviewEvent, mode domain.SessionMode, now time.Time) {
	eventPayload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Review] Failed to encode review event %s: %v", event.ID, err)
		return
	}

	appendOp := domain.NewSyncOperation(domain.EntityReviewEvent, event.ID, domain.OpAppendReview, eventPayload, domain.PriorityHigh, now)
	if err := s.queue.Enqueue(ctx, appendOp); err != nil {
		log.Printf("[Review] Failed to enqueue review event %s: %v", event.ID, err)
	}

	if mode != domain.ModeNormal {
		return
	}

	cardPayload, err := json.Marshal(card)
	if err != nil {
		log.Printf("[Review] Failed to encode card %s: %v", card.ID, err)
		return
	}

	updateOp := domain.NewSyncOperation(domain.EntityCard, card.ID, domain.OpUpdate, cardPayload, domain.PriorityNormal, now)
	if err := s.queue.Enqueue(ctx, updateOp); err != nil {
		log.Printf("[Review] Failed to enqueue card update %s: %v", card.ID, err)
	}
}

// History returns a card's review history, oldest first.
func (s *ReviewService) History(ctx context.Context, cardID string) ([]*domain.ReviewEvent, error) {
	if _, err := s.cards.GetByID(ctx, cardID); err != nil {
		return nil, err
	}
	return s.events.ListByCardID(ctx, cardID)
}
