package http_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/quizlight/recall-sync-engine/internal/adapters/handler/http"
	"github.com/quizlight/recall-sync-engine/internal/adapters/repository"
	"github.com/quizlight/recall-sync-engine/internal/core/domain"
	"github.com/quizlight/recall-sync-engine/internal/core/services"
)

// dropQueue satisfies the enqueuer without a running sync queue.
type dropQueue struct{}

func (dropQueue) Enqueue(context.Context, *domain.SyncOperation) error { return nil }

type deckRouterFixture struct {
	router *gin.Engine
	decks  *repository.InMemoryDeckRepository
	cards  *repository.InMemoryCardRepository
}

func setupDeckRouter() *deckRouterFixture {
	gin.SetMode(gin.TestMode)

	decks := repository.NewInMemoryDeckRepository()
	cards := repository.NewInMemoryCardRepository()
	events := repository.NewInMemoryReviewEventRepository()

	deckSvc := services.NewDeckService(decks, cards, events, dropQueue{}, nil)
	suppression := services.NewSuppressionService(decks, nil)
	handler := adapterHTTP.NewDeckHandler(deckSvc, suppression)

	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1"))
	return &deckRouterFixture{router: r, decks: decks, cards: cards}
}

func (f *deckRouterFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestDeckHandler_Create(t *testing.T) {
	t.Run("Success: 201 Created", func(t *testing.T) {
		f := setupDeckRouter()

		w := f.do("POST", "/api/v1/decks", `{"name": "Spanish"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Spanish"`)
		assert.Contains(t, w.Body.String(), `"suppression":"active"`)
	})

	t.Run("Error: 400 on missing name", func(t *testing.T) {
		f := setupDeckRouter()

		w := f.do("POST", "/api/v1/decks", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeckHandler_Suppression(t *testing.T) {
	seed := func(t *testing.T, f *deckRouterFixture) *domain.Deck {
		t.Helper()
		deck, err := domain.NewDeck("Spanish", time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, f.decks.Create(context.Background(), deck))
		return deck
	}

	t.Run("Success: permanent suppression round trip", func(t *testing.T) {
		f := setupDeckRouter()
		deck := seed(t, f)

		w := f.do("PUT", "/api/v1/decks/"+deck.ID+"/suppression", `{"mode": "permanent"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := f.decks.GetByID(context.Background(), deck.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SuppressionPermanent, stored.Suppression)

		w = f.do("DELETE", "/api/v1/decks/"+deck.ID+"/suppression", "")
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err = f.decks.GetByID(context.Background(), deck.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SuppressionActive, stored.Suppression)
	})

	t.Run("Error: 400 on a past temporary window", func(t *testing.T) {
		f := setupDeckRouter()
		deck := seed(t, f)

		w := f.do("PUT", "/api/v1/decks/"+deck.ID+"/suppression",
			`{"mode": "temporary", "until": "2020-01-01T00:00:00Z"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error: 400 on temporary without until", func(t *testing.T) {
		f := setupDeckRouter()
		deck := seed(t, f)

		w := f.do("PUT", "/api/v1/decks/"+deck.ID+"/suppression", `{"mode": "temporary"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error: 404 on unknown deck", func(t *testing.T) {
		f := setupDeckRouter()

		w := f.do("PUT", "/api/v1/decks/missing/suppression", `{"mode": "permanent"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeckHandler_Delete(t *testing.T) {
	t.Run("Success: 204 and cascade", func(t *testing.T) {
		f := setupDeckRouter()

		deck, err := domain.NewDeck("Spanish", time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, f.decks.Create(context.Background(), deck))

		card, err := domain.NewCard(deck.ID, "la manzana", "the apple", time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, f.cards.Create(context.Background(), card))

		w := f.do("DELETE", "/api/v1/decks/"+deck.ID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		_, err = f.cards.GetByID(context.Background(), card.ID)
		assert.ErrorIs(t, err, domain.ErrCardNotFound)
	})

	t.Run("Error: 404 on unknown deck", func(t *testing.T) {
		f := setupDeckRouter()

		w := f.do("DELETE", "/api/v1/decks/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
