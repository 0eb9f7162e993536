package context

import (
	"context"

	"stockledger/internal/core/id"
)

// Actor identifies who performs a ledger mutation. The API layer
// resolves it from the request (JWT subject); tooling may inject it
// directly. Journal entries keep a nullable reference to it.
type Actor struct {
	ID    id.ID
	Name  string
	Email string
}

type actorContextKey struct{}

// WithActor adds the Actor to ctx.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns the Actor from ctx, or nil.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorContextKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetActorID returns the actor ID from ctx, or a nil ID.
func GetActorID(ctx context.Context) id.ID {
	if a := GetActor(ctx); a != nil {
		return a.ID
	}
	return id.Nil()
}
