// Package store persists content, channels, resolved equivalences and
// report events in SQLite.
//
// The database lives at <data_dir>/equiv.db, runs in WAL mode and is upgraded
// by the ordered migrations embedded under migrations/. Lookups that find no
// row return a nil record and a nil error; callers decide whether absence is
// an error.
package store
