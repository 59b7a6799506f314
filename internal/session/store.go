// Package session keeps pipeline state between the two interview calls.
package session

import (
	"context"
	"errors"

	"github.com/fadilmartias/interview-coach/internal/pipeline"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Save(ctx context.Context, id string, state pipeline.State) error
	Get(ctx context.Context, id string) (pipeline.State, error)
	// Take returns the session and removes it atomically; only one caller
	// can take a given session.
	Take(ctx context.Context, id string) (pipeline.State, error)
	Delete(ctx context.Context, id string) error
}
