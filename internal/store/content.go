package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"equiv/internal/model"
)

const contentColumns = "id, uri, publisher, kind, title, year, media_type, specialization, series_number, episode_number, container_uri, published"

// ContentQuery narrows SearchContent. Zero fields do not constrain.
type ContentQuery struct {
	MediaType        model.MediaType
	Publishers       []model.Publisher
	ExcludePublisher model.Publisher
	Kinds            []model.Kind
}

// CreateOrUpdateContent upserts c by URI, replacing its aliases, and returns
// the stored record.
func (s *Store) CreateOrUpdateContent(ctx context.Context, c model.Content) (model.Content, error) {
	uri := strings.TrimSpace(c.URI)
	if uri == "" {
		return model.Content{}, errors.New("create content: uri is required")
	}
	if c.Kind == "" {
		c.Kind = model.KindItem
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
            INSERT INTO content (uri, publisher, kind, title, year, media_type, specialization,
                series_number, episode_number, container_uri, published, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(uri) DO UPDATE SET
                publisher = excluded.publisher,
                kind = excluded.kind,
                title = excluded.title,
                year = excluded.year,
                media_type = excluded.media_type,
                specialization = excluded.specialization,
                series_number = excluded.series_number,
                episode_number = excluded.episode_number,
                container_uri = excluded.container_uri,
                published = excluded.published,
                updated_at = excluded.updated_at
            RETURNING id`,
			uri,
			string(c.Publisher),
			string(c.Kind),
			strings.TrimSpace(c.Title),
			nullableInt(c.Year),
			nullableString(string(c.MediaType)),
			nullableString(string(c.Specialization)),
			nullableInt(c.SeriesNumber),
			nullableInt(c.EpisodeNumber),
			nullableString(strings.TrimSpace(c.ContainerURI)),
			boolToInt(c.Published),
			now(),
		)
		if err := row.Scan(&c.ID); err != nil {
			return fmt.Errorf("upsert content: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM content_aliases WHERE content_id = ?", c.ID); err != nil {
			return fmt.Errorf("clear content aliases: %w", err)
		}
		for _, alias := range c.Aliases {
			if strings.TrimSpace(alias.Value) == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO content_aliases (content_id, namespace, value) VALUES (?, ?, ?)",
				c.ID, strings.TrimSpace(alias.Namespace), strings.TrimSpace(alias.Value),
			); err != nil {
				return fmt.Errorf("insert content alias: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.Content{}, err
	}
	c.URI = uri
	return c, nil
}

// ContentByURI returns the content with uri, or nil when absent.
func (s *Store) ContentByURI(ctx context.Context, uri string) (*model.Content, error) {
	items, err := s.queryContent(ctx, `SELECT `+contentColumns+` FROM content WHERE uri = ?`, strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("content by uri: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ContentByPublisher lists content of the given publishers ordered by URI.
func (s *Store) ContentByPublisher(ctx context.Context, publishers ...model.Publisher) ([]model.Content, error) {
	if len(publishers) == 0 {
		return nil, nil
	}
	items, err := s.queryContent(ctx,
		`SELECT `+contentColumns+` FROM content WHERE publisher IN (`+makePlaceholders(len(publishers))+`) ORDER BY uri`,
		publisherArgs(publishers)...,
	)
	if err != nil {
		return nil, fmt.Errorf("content by publisher: %w", err)
	}
	return items, nil
}

// SearchContent returns published content matching q ordered by URI.
func (s *Store) SearchContent(ctx context.Context, q ContentQuery) ([]model.Content, error) {
	clauses := []string{"published = 1"}
	var args []any
	if q.MediaType != model.MediaUnknown {
		clauses = append(clauses, "media_type = ?")
		args = append(args, string(q.MediaType))
	}
	if len(q.Publishers) > 0 {
		clauses = append(clauses, "publisher IN ("+makePlaceholders(len(q.Publishers))+")")
		args = append(args, publisherArgs(q.Publishers)...)
	}
	if q.ExcludePublisher != "" {
		clauses = append(clauses, "publisher <> ?")
		args = append(args, string(q.ExcludePublisher))
	}
	if len(q.Kinds) > 0 {
		clauses = append(clauses, "kind IN ("+makePlaceholders(len(q.Kinds))+")")
		for _, k := range q.Kinds {
			args = append(args, string(k))
		}
	}
	items, err := s.queryContent(ctx,
		`SELECT `+contentColumns+` FROM content WHERE `+strings.Join(clauses, " AND ")+` ORDER BY uri`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}
	return items, nil
}

// ContentByAlias returns content carrying alias.
func (s *Store) ContentByAlias(ctx context.Context, alias model.Alias) ([]model.Content, error) {
	items, err := s.queryContent(ctx, `
        SELECT `+prefixColumns("c", contentColumns)+` FROM content c
        JOIN content_aliases a ON a.content_id = c.id
        WHERE a.namespace = ? AND a.value = ?
        ORDER BY c.uri`,
		strings.TrimSpace(alias.Namespace), strings.TrimSpace(alias.Value),
	)
	if err != nil {
		return nil, fmt.Errorf("content by alias: %w", err)
	}
	return items, nil
}

// ContentInContainer returns the children of the container with uri.
func (s *Store) ContentInContainer(ctx context.Context, containerURI string) ([]model.Content, error) {
	items, err := s.queryContent(ctx,
		`SELECT `+contentColumns+` FROM content WHERE container_uri = ? ORDER BY uri`,
		strings.TrimSpace(containerURI),
	)
	if err != nil {
		return nil, fmt.Errorf("content in container: %w", err)
	}
	return items, nil
}

func (s *Store) queryContent(ctx context.Context, query string, args ...any) ([]model.Content, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Content
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.attachContentAliases(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) attachContentAliases(ctx context.Context, items []model.Content) error {
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
		`SELECT content_id, namespace, value FROM content_aliases WHERE content_id IN (`+makePlaceholders(len(args))+`) ORDER BY namespace, value`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("load content aliases: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id    int64
			alias model.Alias
		)
		if err := rows.Scan(&id, &alias.Namespace, &alias.Value); err != nil {
			return fmt.Errorf("scan content alias: %w", err)
		}
		if i, ok := index[id]; ok {
			items[i].Aliases = append(items[i].Aliases, alias)
		}
	}
	return rows.Err()
}

func scanContent(scanner interface{ Scan(dest ...any) error }) (model.Content, error) {
	var (
		c              model.Content
		publisher      string
		kind           string
		year           sql.NullInt64
		mediaType      sql.NullString
		specialization sql.NullString
		seriesNumber   sql.NullInt64
		episodeNumber  sql.NullInt64
		containerURI   sql.NullString
		published      int
	)
	if err := scanner.Scan(
		&c.ID,
		&c.URI,
		&publisher,
		&kind,
		&c.Title,
		&year,
		&mediaType,
		&specialization,
		&seriesNumber,
		&episodeNumber,
		&containerURI,
		&published,
	); err != nil {
		return model.Content{}, err
	}
	c.Publisher = model.Publisher(publisher)
	c.Kind = model.Kind(kind)
	c.Year = int(year.Int64)
	c.MediaType = model.MediaType(mediaType.String)
	c.Specialization = model.Specialization(specialization.String)
	c.SeriesNumber = int(seriesNumber.Int64)
	c.EpisodeNumber = int(episodeNumber.Int64)
	c.ContainerURI = containerURI.String
	c.Published = published != 0
	return c, nil
}

func publisherArgs(publishers []model.Publisher) []any {
	args := make([]any, 0, len(publishers))
	for _, p := range publishers {
		args = append(args, string(p))
	}
	return args
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
