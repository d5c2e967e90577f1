package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDeckNameEmpty          = errors.New("deck name cannot be empty")
	ErrDeckNameTooLong        = errors.New("deck name is too long (max 100 chars)")
	ErrSuppressionWindowPast  = errors.New("suppression window must end in the future")
	ErrDeckNotSuppressed      = errors.New("deck is not suppressed")
)

const (
	SuppressionActive    = "active"
	SuppressionPermanent = "permanent"
	SuppressionTemporary = "temporary"

	MaxDeckNameLen = 100
)

type Deck struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	Suppression     string     `json:"suppression" db:"suppression"`
	SuppressedUntil *time.Time `json:"suppressed_until,omitempty" db:"suppressed_until"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func validateDeckName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrDeckNameEmpty
	}
	if len(trimmed) > MaxDeckNameLen {
		return "", ErrDeckNameTooLong
	}
	return trimmed, nil
}

func NewDeck(name string, now time.Time) (*Deck, error) {
	cleanName, err := validateDeckName(name)
	if err != nil {
		return nil, err
	}

	now = now.UTC()

	return &Deck{
		ID:          uuid.NewString(),
		Name:        cleanName,
		Suppression: SuppressionActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (d *Deck) Rename(name string, now time.Time) error {
	cleanName, err := validateDeckName(name)
	if err != nil {
		return err
	}

	d.Name = cleanName
	d.UpdatedAt = now.UTC()
	return nil
}

// SuppressPermanently excludes the deck from selection until explicitly lifted.
func (d *Deck) SuppressPermanently(now time.Time) {
	d.Suppression = SuppressionPermanent
	d.SuppressedUntil = nil
	d.UpdatedAt = now.UTC()
}

// SuppressUntil excludes the deck from selection until the given instant.
// The window must end in the future.
func (d *Deck) SuppressUntil(until, now time.Time) error {
	if !until.After(now) {
		return ErrSuppressionWindowPast
	}

	u := until.UTC()
	d.Suppression = SuppressionTemporary
	d.SuppressedUntil = &u
	d.UpdatedAt = now.UTC()
	return nil
}

func (d *Deck) LiftSuppression(now time.Time) {
	d.Suppression = SuppressionActive
	d.SuppressedUntil = nil
	d.UpdatedAt = now.UTC()
}

// ResolveSuppression evaluates the effective suppression state at the given
// time. A temporary window that has elapsed transitions the deck back to
// active; lapsed reports that transition so the caller can persist it.
// No timers are involved: lapses are discovered on read.
func (d *Deck) ResolveSuppression(now time.Time) (suppressed, lapsed bool) {
	switch d.Suppression {
	case SuppressionPermanent:
		return true, false
	case SuppressionTemporary:
		if d.SuppressedUntil != nil && now.Before(*d.SuppressedUntil) {
			return true, false
		}
		d.Suppression = SuppressionActive
		d.SuppressedUntil = nil
		d.UpdatedAt = now.UTC()
		return false, true
	default:
		return false, false
	}
}
