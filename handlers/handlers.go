package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/auto-hunter/site/fuel"
	"github.com/auto-hunter/site/gemini"
	"github.com/auto-hunter/site/offer"
	"github.com/auto-hunter/site/search"
	"github.com/auto-hunter/site/session"
)

var (
	searchService *search.Service
	offerService  *offer.Service
	fuelService   *fuel.Service
	aiClient      *gemini.Client
	sessions      *session.Store
)

// Setup wires the shared services used by the handler functions. Call once
// at startup before registering routes.
func Setup(s *search.Service, o *offer.Service, f *fuel.Service, ai *gemini.Client, store *session.Store) {
	searchService = s
	offerService = o
	fuelService = f
	aiClient = ai
	sessions = store
}

const (
	retryAttempts  = 2
	retryBaseDelay = 500 * time.Millisecond
)

// withRetry runs fn, retrying only transient network failures. Auth,
// rate-limit, and malformed-response errors are returned to the caller
// unchanged on the first occurrence.
func withRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var result T
	var err error
	delay := retryBaseDelay
	for attempt := 0; ; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}
		var transient *gemini.TransientError
		if !errors.As(err, &transient) || attempt >= retryAttempts {
			return result, err
		}
		log.Printf("[retry] transient failure (attempt %d): %v", attempt+1, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return result, err
		}
		delay *= 2
	}
}
