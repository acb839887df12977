package a

import "context"

type Event struct {
	ID string
}

type Repo interface {
	FindEventByID(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, universeID string) ([]*Event, error)
	FindFigureByID(ctx context.Context, id string) (*Event, error)
}

func bad(ctx context.Context, ids []string, repo Repo) {
	for _, id := range ids {
		repo.FindEventByID(ctx, id)  // want "per-row lookup: FindEventByID inside loop"
		repo.FindFigureByID(ctx, id) // want "per-row lookup: FindFigureByID inside loop"
	}
}

func good(ctx context.Context, repo Repo, ids []string) {
	// One query for the whole set, then index in memory.
	events, _ := repo.ListEvents(ctx, "u1")
	byID := make(map[string]*Event, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}
	for _, id := range ids {
		_ = byID[id]
	}
}
