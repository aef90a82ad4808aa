package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrackRepository handles track database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

// Insert writes the full denormalized metadata row and returns the stored
// row. The returned row, not the caller's input, is what handlers respond
// with: server-assigned id and timestamp win over client-echoed values.
func (r *TrackRepository) Insert(ctx context.Context, track *Track) (*Track, error) {
	query := `
		INSERT INTO tracks (title, artist_name, uploader_name, storage_key, public_url,
			cover_path, cover_url, size_bytes, mime_type, auth_subject, legacy_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, title, artist_name, uploader_name, storage_key, public_url,
			cover_path, cover_url, size_bytes, mime_type, duration_seconds,
			auth_subject, legacy_user_id, created_at
	`
	var created Track
	err := r.pool.QueryRow(ctx, query,
		track.Title,
		track.ArtistName,
		track.UploaderName,
		track.StorageKey,
		track.PublicURL,
		track.CoverPath,
		track.CoverURL,
		track.SizeBytes,
		track.MimeType,
		track.AuthSubject,
		track.LegacyUserID,
	).Scan(
		&created.ID,
		&created.Title,
		&created.ArtistName,
		&created.UploaderName,
		&created.StorageKey,
		&created.PublicURL,
		&created.CoverPath,
		&created.CoverURL,
		&created.SizeBytes,
		&created.MimeType,
		&created.DurationSeconds,
		&created.AuthSubject,
		&created.LegacyUserID,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting track: %w", err)
	}
	return &created, nil
}

// Get retrieves a track by id.
func (r *TrackRepository) Get(ctx context.Context, id int64) (*Track, error) {
	query := `
		SELECT id, title, artist_name, uploader_name, storage_key, public_url,
			cover_path, cover_url, size_bytes, mime_type, duration_seconds,
			auth_subject, legacy_user_id, created_at
		FROM tracks
		WHERE id = $1
	`
	var track Track
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&track.ID,
		&track.Title,
		&track.ArtistName,
		&track.UploaderName,
		&track.StorageKey,
		&track.PublicURL,
		&track.CoverPath,
		&track.CoverURL,
		&track.SizeBytes,
		&track.MimeType,
		&track.DurationSeconds,
		&track.AuthSubject,
		&track.LegacyUserID,
		&track.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying track: %w", err)
	}
	return &track, nil
}

// ListRecent retrieves the newest tracks, newest first.
func (r *TrackRepository) ListRecent(ctx context.Context, limit int) ([]Track, error) {
	query := `
		SELECT id, title, artist_name, uploader_name, storage_key, public_url,
			cover_path, cover_url, size_bytes, mime_type, duration_seconds,
			auth_subject, legacy_user_id, created_at
		FROM tracks
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var track Track
		if err := rows.Scan(
			&track.ID,
			&track.Title,
			&track.ArtistName,
			&track.UploaderName,
			&track.StorageKey,
			&track.PublicURL,
			&track.CoverPath,
			&track.CoverURL,
			&track.SizeBytes,
			&track.MimeType,
			&track.DurationSeconds,
			&track.AuthSubject,
			&track.LegacyUserID,
			&track.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
