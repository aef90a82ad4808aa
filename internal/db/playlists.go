package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaylistRepository handles playlist and membership database operations.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new playlist for the given owner.
func (r *PlaylistRepository) Create(ctx context.Context, userID int64, name string) (*Playlist, error) {
	query := `
		INSERT INTO playlists (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, created_at
	`
	var pl Playlist
	err := r.pool.QueryRow(ctx, query, userID, name).Scan(
		&pl.ID,
		&pl.UserID,
		&pl.Name,
		&pl.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting playlist: %w", err)
	}
	return &pl, nil
}

// Get retrieves a playlist by id (used for ownership checks).
func (r *PlaylistRepository) Get(ctx context.Context, id int64) (*Playlist, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM playlists
		WHERE id = $1
	`
	var pl Playlist
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&pl.ID,
		&pl.UserID,
		&pl.Name,
		&pl.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying playlist: %w", err)
	}
	return &pl, nil
}

// ListByOwner retrieves all playlists owned by userID together with their
// ordered track membership. Tracks are LEFT JOINed so a membership row whose
// track has gone missing degrades to null fields instead of disappearing.
// Insertion order (added_at ascending) is the canonical listing order.
func (r *PlaylistRepository) ListByOwner(ctx context.Context, userID int64) ([]PlaylistWithTracks, error) {
	query := `
		SELECT p.id, p.name, p.created_at
		FROM playlists p
		WHERE p.user_id = $1
		ORDER BY p.created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	defer rows.Close()

	playlists := []PlaylistWithTracks{}
	for rows.Next() {
		var pl PlaylistWithTracks
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		playlists = append(playlists, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range playlists {
		tracks, err := r.listTracks(ctx, playlists[i].ID)
		if err != nil {
			return nil, err
		}
		playlists[i].Tracks = tracks
	}
	return playlists, nil
}

func (r *PlaylistRepository) listTracks(ctx context.Context, playlistID int64) ([]PlaylistTrack, error) {
	query := `
		SELECT pt.track_id, t.title, t.public_url, t.cover_url, t.duration_seconds
		FROM playlist_tracks pt
		LEFT JOIN tracks t ON t.id = pt.track_id
		WHERE pt.playlist_id = $1
		ORDER BY pt.added_at ASC
	`
	rows, err := r.pool.Query(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("querying playlist tracks: %w", err)
	}
	defer rows.Close()

	tracks := []PlaylistTrack{}
	for rows.Next() {
		var pt PlaylistTrack
		if err := rows.Scan(&pt.TrackID, &pt.Title, &pt.PublicURL, &pt.CoverURL, &pt.Duration); err != nil {
			return nil, fmt.Errorf("scanning playlist track: %w", err)
		}
		tracks = append(tracks, pt)
	}
	return tracks, rows.Err()
}

// AddTrack inserts a membership row. The primary key on
// (playlist_id, track_id) is the idempotency authority: a duplicate add
// conflicts, inserts nothing and returns inserted=false without error.
func (r *PlaylistRepository) AddTrack(ctx context.Context, playlistID, trackID int64) (bool, error) {
	query := `
		INSERT INTO playlist_tracks (playlist_id, track_id)
		VALUES ($1, $2)
		ON CONFLICT (playlist_id, track_id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query, playlistID, trackID)
	if err != nil {
		return false, fmt.Errorf("adding playlist track: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveTrack deletes a membership row and returns how many rows went away.
// Removing a non-member pair deletes nothing and is not an error.
func (r *PlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID int64) (int64, error) {
	query := `
		DELETE FROM playlist_tracks
		WHERE playlist_id = $1 AND track_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, playlistID, trackID)
	if err != nil {
		return 0, fmt.Errorf("removing playlist track: %w", err)
	}
	return tag.RowsAffected(), nil
}
