package testsupport

import (
	"context"
	"testing"

	"equiv/internal/config"
	"equiv/internal/model"
	"equiv/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustSaveContent upserts content and returns the stored record.
func MustSaveContent(t testing.TB, st *store.Store, c model.Content) model.Content {
	t.Helper()

	saved, err := st.CreateOrUpdateContent(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateOrUpdateContent(%s): %v", c.URI, err)
	}
	return saved
}

// MustSaveChannel upserts a channel and returns the stored record.
func MustSaveChannel(t testing.TB, st *store.Store, ch model.Channel) model.Channel {
	t.Helper()

	saved, err := st.CreateOrUpdateChannel(context.Background(), ch)
	if err != nil {
		t.Fatalf("CreateOrUpdateChannel(%s): %v", ch.URI, err)
	}
	return saved
}
