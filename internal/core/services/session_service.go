package services

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

const (
	// CramCeiling bounds cram sessions so an enormous pool cannot produce
	// an unbounded session.
	CramCeiling = 500

	// Forced-session ceilings used when a normal selection came back empty
	// and the caller explicitly asked to study anyway.
	ForcedMaxDue = 200
	ForcedMaxNew = 50
)

// SessionCaps bounds the daily workload of a normal session. PracticeSize
// bounds practice sessions, which ignore the due/new caps.
type SessionCaps struct {
	MaxDue       int
	MaxNew       int
	PracticeSize int
}

func DefaultSessionCaps() SessionCaps {
	return SessionCaps{
		MaxDue:       100,
		MaxNew:       20,
		PracticeSize: 30,
	}
}

// SessionService assembles the ordered set of cards for one study session.
// It consults the suppression service for every deck in the pool, which is
// also what discovers and persists lapsed suppression windows.
type SessionService struct {
	cards       domain.CardRepository
	suppression *SuppressionService
	now         func() time.Time
	rng         *rand.Rand
}

func NewSessionService(cards domain.CardRepository, suppression *SuppressionService, now func() time.Time, rng *rand.Rand) *SessionService {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SessionService{
		cards:       cards,
		suppression: suppression,
		now:         now,
		rng:         rng,
	}
}

// Select builds the card list for a session in the given mode.
//
// Normal returns up to MaxDue due cards (most overdue first) followed by up
// to MaxNew new cards (oldest first); only this mode's reviews are assessed.
// Practice returns a shuffled sample of due and new cards up to PracticeSize.
// Cram returns the whole pool, bounded only by the absolute ceiling, and
// ignores suppression and scheduling entirely.
func (s *SessionService) Select(ctx context.Context, mode domain.SessionMode, caps SessionCaps) ([]*domain.Card, error) {
	pool, err := s.cards.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if mode == domain.ModeCram {
		selected := sortByCreation(pool)
		if len(selected) > CramCeiling {
			selected = selected[:CramCeiling]
		}
		return selected, nil
	}

	eligible, err := s.excludeSuppressed(ctx, pool)
	if err != nil {
		return nil, err
	}

	var due, fresh []*domain.Card
	for _, card := range eligible {
		switch {
		case card.Status == domain.StatusNew:
			fresh = append(fresh, card)
		case card.IsDue(now):
			due = append(due, card)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].NextReviewAt.Equal(due[j].NextReviewAt) {
			return due[i].NextReviewAt.Before(due[j].NextReviewAt)
		}
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})
	fresh = sortByCreation(fresh)

	if mode == domain.ModePractice {
		sample := append(append([]*domain.Card{}, due...), fresh...)
		s.rng.Shuffle(len(sample), func(i, j int) {
			sample[i], sample[j] = sample[j], sample[i]
		})
		if len(sample) > caps.PracticeSize {
			sample = sample[:caps.PracticeSize]
		}
		return sample, nil
	}

	if len(due) > caps.MaxDue {
		due = due[:caps.MaxDue]
	}
	if len(fresh) > caps.MaxNew {
		fresh = fresh[:caps.MaxNew]
	}

	return append(due, fresh...), nil
}

// SelectForced re-runs a normal selection with the caps relaxed to a
// generous fixed ceiling. It exists for the caller that got an empty normal
// session and explicitly chose to study anyway; Select never falls back to
// it on its own.
func (s *SessionService) SelectForced(ctx context.Context) ([]*domain.Card, error) {
	return s.Select(ctx, domain.ModeNormal, SessionCaps{
		MaxDue: ForcedMaxDue,
		MaxNew: ForcedMaxNew,
	})
}

// excludeSuppressed drops cards whose deck is currently suppressed. Verdicts
// are cached per deck for the duration of one selection.
func (s *SessionService) excludeSuppressed(ctx context.Context, pool []*domain.Card) ([]*domain.Card, error) {
	verdicts := make(map[string]bool)

	var eligible []*domain.Card
	for _, card := range pool {
		suppressed, known := verdicts[card.DeckID]
		if !known {
			var err error
			suppressed, err = s.suppression.IsSuppressed(ctx, card.DeckID)
			if err != nil {
				return nil, err
			}
			verdicts[card.DeckID] = suppressed
		}
		if !suppressed {
			eligible = append(eligible, card)
		}
	}
	return eligible, nil
}

func sortByCreation(cards []*domain.Card) []*domain.Card {
	sorted := append([]*domain.Card{}, cards...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}
