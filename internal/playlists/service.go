// Package playlists mutates shared playlist state under ownership checks and
// idempotency guarantees delegated to the datastore's uniqueness constraint.
package playlists

import (
	"context"
	"errors"
	"strings"

	"github.com/soundrift/soundrift/internal/apperr"
	"github.com/soundrift/soundrift/internal/db"
	"github.com/soundrift/soundrift/internal/realtime"
)

// PlaylistStore is the persistence surface for playlists and membership.
type PlaylistStore interface {
	Create(ctx context.Context, userID int64, name string) (*db.Playlist, error)
	Get(ctx context.Context, id int64) (*db.Playlist, error)
	ListByOwner(ctx context.Context, userID int64) ([]db.PlaylistWithTracks, error)
	AddTrack(ctx context.Context, playlistID, trackID int64) (bool, error)
	RemoveTrack(ctx context.Context, playlistID, trackID int64) (int64, error)
}

type Service struct {
	store PlaylistStore
	bcast realtime.Broadcaster
}

func NewService(store PlaylistStore, bcast realtime.Broadcaster) *Service {
	return &Service{store: store, bcast: bcast}
}

// List returns the caller's playlists with their ordered track membership.
func (s *Service) List(ctx context.Context, userID int64) ([]db.PlaylistWithTracks, error) {
	out, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("failed to list playlists", err)
	}
	return out, nil
}

// Create makes a new playlist owned by userID and broadcasts
// playlist-created.
func (s *Service) Create(ctx context.Context, userID int64, name string) (*db.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("playlist name is required")
	}
	pl, err := s.store.Create(ctx, userID, name)
	if err != nil {
		return nil, apperr.Persistence("failed to create playlist", err)
	}
	s.bcast.Broadcast("playlist-created", pl)
	return pl, nil
}

// AddTrack adds trackID to the playlist after the ownership check. A pair
// that already exists succeeds with inserted=false; calling twice is never
// an error. Broadcasts playlist-updated with the actual insert outcome.
func (s *Service) AddTrack(ctx context.Context, userID, playlistID, trackID int64) (bool, error) {
	if err := s.checkOwner(ctx, userID, playlistID); err != nil {
		return false, err
	}
	inserted, err := s.store.AddTrack(ctx, playlistID, trackID)
	if err != nil {
		return false, apperr.Persistence("failed to add track", err)
	}
	s.bcast.Broadcast("playlist-updated", map[string]interface{}{
		"playlistId": playlistID,
		"trackId":    trackID,
		"added":      inserted,
	})
	return inserted, nil
}

// RemoveTrack deletes the membership row after the ownership check. Removing
// a non-member pair succeeds with deletedCount=0. The playlist-updated event
// is broadcast unconditionally and does not distinguish "removed" from
// "was already absent".
func (s *Service) RemoveTrack(ctx context.Context, userID, playlistID, trackID int64) (int64, error) {
	if err := s.checkOwner(ctx, userID, playlistID); err != nil {
		return 0, err
	}
	deleted, err := s.store.RemoveTrack(ctx, playlistID, trackID)
	if err != nil {
		return 0, apperr.Persistence("failed to remove track", err)
	}
	s.bcast.Broadcast("playlist-updated", map[string]interface{}{
		"playlistId": playlistID,
		"trackId":    trackID,
		"removed":    true,
	})
	return deleted, nil
}

func (s *Service) checkOwner(ctx context.Context, userID, playlistID int64) error {
	pl, err := s.store.Get(ctx, playlistID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("playlist not found")
	}
	if err != nil {
		return apperr.Persistence("failed to load playlist", err)
	}
	if pl.UserID != userID {
		return apperr.Forbidden("not the playlist owner")
	}
	return nil
}
