package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"equiv/internal/model"
)

const channelColumns = "id, uri, publisher, title, media_type, same_as_id, same_as_uri"

// CreateOrUpdateChannel upserts ch by URI, replacing its aliases and its
// same-as link, and returns the stored record.
func (s *Store) CreateOrUpdateChannel(ctx context.Context, ch model.Channel) (model.Channel, error) {
	uri := strings.TrimSpace(ch.URI)
	if uri == "" {
		return model.Channel{}, errors.New("create channel: uri is required")
	}
	var sameAsID, sameAsURI any
	if ref, ok := ch.LinkedRef(); ok {
		if ref.ID != 0 {
			sameAsID = ref.ID
		}
		sameAsURI = nullableString(ref.URI)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
            INSERT INTO channels (uri, publisher, title, media_type, same_as_id, same_as_uri, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(uri) DO UPDATE SET
                publisher = excluded.publisher,
                title = excluded.title,
                media_type = excluded.media_type,
                same_as_id = excluded.same_as_id,
                same_as_uri = excluded.same_as_uri,
                updated_at = excluded.updated_at
            RETURNING id`,
			uri,
			string(ch.Publisher),
			strings.TrimSpace(ch.Title),
			nullableString(string(ch.MediaType)),
			sameAsID,
			sameAsURI,
			now(),
		)
		if err := row.Scan(&ch.ID); err != nil {
			return fmt.Errorf("upsert channel: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM channel_aliases WHERE channel_id = ?", ch.ID); err != nil {
			return fmt.Errorf("clear channel aliases: %w", err)
		}
		for _, alias := range ch.Aliases {
			if strings.TrimSpace(alias.Value) == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO channel_aliases (channel_id, namespace, value) VALUES (?, ?, ?)",
				ch.ID, strings.TrimSpace(alias.Namespace), strings.TrimSpace(alias.Value),
			); err != nil {
				return fmt.Errorf("insert channel alias: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.Channel{}, err
	}
	ch.URI = uri
	return ch, nil
}

// ChannelByURI returns the channel with uri, or nil when absent.
func (s *Store) ChannelByURI(ctx context.Context, uri string) (*model.Channel, error) {
	items, err := s.queryChannels(ctx, `SELECT `+channelColumns+` FROM channels WHERE uri = ?`, strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("channel by uri: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ChannelByID returns the channel with id, or nil when absent.
func (s *Store) ChannelByID(ctx context.Context, id int64) (*model.Channel, error) {
	items, err := s.queryChannels(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("channel by id: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ChannelsByPublisher lists channels of the given publishers ordered by URI.
// With no publishers every channel is returned.
func (s *Store) ChannelsByPublisher(ctx context.Context, publishers ...model.Publisher) ([]model.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels`
	if len(publishers) > 0 {
		query += ` WHERE publisher IN (` + makePlaceholders(len(publishers)) + `)`
	}
	items, err := s.queryChannels(ctx, query+` ORDER BY uri`, publisherArgs(publishers)...)
	if err != nil {
		return nil, fmt.Errorf("channels by publisher: %w", err)
	}
	return items, nil
}

func (s *Store) queryChannels(ctx context.Context, query string, args ...any) ([]model.Channel, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Channel
	for rows.Next() {
		item, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.attachChannelAliases(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) attachChannelAliases(ctx context.Context, items []model.Channel) error {
	if len(items) == 0 {
		return nil
	}
	index := make(map[int64]int, len(items))
	args := make([]any, 0, len(items))
	for i, item := range items {
		index[item.ID] = i
		args = append(args, item.ID)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel_id, namespace, value FROM channel_aliases WHERE channel_id IN (`+makePlaceholders(len(args))+`) ORDER BY namespace, value`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("load channel aliases: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id    int64
			alias model.Alias
		)
		if err := rows.Scan(&id, &alias.Namespace, &alias.Value); err != nil {
			return fmt.Errorf("scan channel alias: %w", err)
		}
		if i, ok := index[id]; ok {
			items[i].Aliases = append(items[i].Aliases, alias)
		}
	}
	return rows.Err()
}

func scanChannel(scanner interface{ Scan(dest ...any) error }) (model.Channel, error) {
	var (
		ch        model.Channel
		publisher string
		mediaType sql.NullString
		sameAsID  sql.NullInt64
		sameAsURI sql.NullString
	)
	if err := scanner.Scan(&ch.ID, &ch.URI, &publisher, &ch.Title, &mediaType, &sameAsID, &sameAsURI); err != nil {
		return model.Channel{}, err
	}
	ch.Publisher = model.Publisher(publisher)
	ch.MediaType = model.MediaType(mediaType.String)
	if sameAsURI.Valid && sameAsURI.String != "" {
		ch.SameAs = []model.ChannelRef{{ID: sameAsID.Int64, URI: sameAsURI.String}}
	}
	return ch, nil
}
