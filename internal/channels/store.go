package channels

import (
	"context"

	"equiv/internal/model"
	"equiv/internal/store"
)

// Store is the persistence the updaters need. Resolve and ResolveID return
// nil when the channel does not exist.
type Store interface {
	Resolve(ctx context.Context, uri string) (*model.Channel, error)
	ResolveID(ctx context.Context, id int64) (*model.Channel, error)
	ChannelsByPublisher(ctx context.Context, publishers ...model.Publisher) ([]model.Channel, error)
	CreateOrUpdate(ctx context.Context, ch model.Channel) (model.Channel, error)
}

// NewStore adapts the SQLite store.
func NewStore(st *store.Store) Store {
	return sqliteStore{st: st}
}

type sqliteStore struct {
	st *store.Store
}

func (s sqliteStore) Resolve(ctx context.Context, uri string) (*model.Channel, error) {
	return s.st.ChannelByURI(ctx, uri)
}

func (s sqliteStore) ResolveID(ctx context.Context, id int64) (*model.Channel, error) {
	return s.st.ChannelByID(ctx, id)
}

func (s sqliteStore) ChannelsByPublisher(ctx context.Context, publishers ...model.Publisher) ([]model.Channel, error) {
	return s.st.ChannelsByPublisher(ctx, publishers...)
}

func (s sqliteStore) CreateOrUpdate(ctx context.Context, ch model.Channel) (model.Channel, error) {
	return s.st.CreateOrUpdateChannel(ctx, ch)
}
