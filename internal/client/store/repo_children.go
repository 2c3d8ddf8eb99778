package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/dbx"
	"github.com/kevinbuckley/tripwit/internal/domain"
)

// Stop children: comments, links, todos. These are leaf records, so the
// mapping stays deliberately small.

func upsertComment(ctx context.Context, q dbx.DBTX, c domain.Comment) error {
	query := `INSERT INTO comments (id, stop_id, author, body, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stop_id = excluded.stop_id,
			author = excluded.author,
			body = excluded.body`
	_, err := q.ExecContext(ctx, query,
		c.ID.String(), c.StopID.String(), c.Author, c.Body, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert comment: %w", err)
	}
	return nil
}

func listComments(ctx context.Context, q dbx.DBTX, stopID uuid.UUID) ([]domain.Comment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, stop_id, author, body, created_at FROM comments WHERE stop_id = ? ORDER BY created_at`,
		stopID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var c domain.Comment
		var id, sid string
		if err := rows.Scan(&id, &sid, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if c.StopID, err = uuid.Parse(sid); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func upsertLink(ctx context.Context, q dbx.DBTX, l domain.Link) error {
	query := `INSERT INTO links (id, stop_id, title, url, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stop_id = excluded.stop_id,
			title = excluded.title,
			url = excluded.url`
	_, err := q.ExecContext(ctx, query,
		l.ID.String(), l.StopID.String(), l.Title, l.URL, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert link: %w", err)
	}
	return nil
}

func listLinks(ctx context.Context, q dbx.DBTX, stopID uuid.UUID) ([]domain.Link, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, stop_id, title, url, created_at FROM links WHERE stop_id = ? ORDER BY created_at`,
		stopID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select links: %w", err)
	}
	defer rows.Close()

	var result []domain.Link
	for rows.Next() {
		var l domain.Link
		var id, sid string
		if err := rows.Scan(&id, &sid, &l.Title, &l.URL, &l.CreatedAt); err != nil {
			return nil, err
		}
		if l.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if l.StopID, err = uuid.Parse(sid); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func upsertTodo(ctx context.Context, q dbx.DBTX, td domain.Todo) error {
	query := `INSERT INTO todos (id, stop_id, title, done, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stop_id = excluded.stop_id,
			title = excluded.title,
			done = excluded.done`
	_, err := q.ExecContext(ctx, query,
		td.ID.String(), td.StopID.String(), td.Title, td.Done, td.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert todo: %w", err)
	}
	return nil
}

func listTodos(ctx context.Context, q dbx.DBTX, stopID uuid.UUID) ([]domain.Todo, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, stop_id, title, done, created_at FROM todos WHERE stop_id = ? ORDER BY created_at`,
		stopID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select todos: %w", err)
	}
	defer rows.Close()

	var result []domain.Todo
	for rows.Next() {
		var td domain.Todo
		var id, sid string
		if err := rows.Scan(&id, &sid, &td.Title, &td.Done, &td.CreatedAt); err != nil {
			return nil, err
		}
		if td.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if td.StopID, err = uuid.Parse(sid); err != nil {
			return nil, err
		}
		result = append(result, td)
	}
	return result, rows.Err()
}
