// Package tracks implements content ingestion: accept an uploaded audio
// payload, persist the binary with fallback handling, record metadata and
// notify realtime subscribers.
package tracks

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/soundrift/soundrift/internal/apperr"
	"github.com/soundrift/soundrift/internal/config"
	"github.com/soundrift/soundrift/internal/db"
	"github.com/soundrift/soundrift/internal/realtime"
	"github.com/soundrift/soundrift/pkg/logger"
	"github.com/soundrift/soundrift/pkg/metrics"
	"github.com/soundrift/soundrift/pkg/middleware"
)

// DefaultArtistName is recorded when the request carries no artist.
const DefaultArtistName = "Unknown Artist"

// ObjectStore is the object-storage capability ingestion consumes.
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
}

// TrackStore is the persistence surface for track metadata.
type TrackStore interface {
	Insert(ctx context.Context, track *db.Track) (*db.Track, error)
	Get(ctx context.Context, id int64) (*db.Track, error)
	ListRecent(ctx context.Context, limit int) ([]db.Track, error)
}

// Upload is one file from the multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Submission is the parsed upload request.
type Submission struct {
	Title        string
	ArtistName   string
	UploaderName string
	LegacyUserID *int64
	LegacyName   string // cookie-carried display name, lowest-priority fallback above artist
	Token        string // raw bearer credential, may be empty
	Audio        *Upload
	Cover        *Upload
}

// Service performs the ingestion flow.
type Service struct {
	store    ObjectStore
	tracks   TrackStore
	resolver middleware.IdentityResolver
	bcast    realtime.Broadcaster
	assets   config.AssetsConfig
}

func NewService(store ObjectStore, tracks TrackStore, resolver middleware.IdentityResolver, bcast realtime.Broadcaster, assets config.AssetsConfig) *Service {
	return &Service{store: store, tracks: tracks, resolver: resolver, bcast: bcast, assets: assets}
}

// Submit validates the submission, uploads the binaries (substituting the
// configured fallback asset on object-store failure), writes the metadata
// row and broadcasts a new-track event. The returned row is the stored one;
// server-assigned fields win over anything the caller sent.
func (s *Service) Submit(ctx context.Context, sub Submission) (*db.Track, error) {
	title := strings.TrimSpace(sub.Title)
	if title == "" {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, apperr.Validation("title is required")
	}
	if sub.Audio == nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, apperr.Validation("audio file is required")
	}
	artist := strings.TrimSpace(sub.ArtistName)
	if artist == "" {
		artist = DefaultArtistName
	}

	// Identity is best-effort for ingestion: any resolution failure leaves
	// the upload anonymous rather than rejecting it.
	var ident *middleware.Identity
	if s.resolver != nil {
		id, err := s.resolver.Resolve(ctx, sub.Token)
		if err != nil {
			logger.Warnf("upload: identity resolution failed, continuing anonymous: %v", err)
		} else {
			ident = id
		}
	}

	uploader := resolveUploaderName(sub, ident, artist)

	now := time.Now().UTC()
	row := &db.Track{
		Title:      title,
		ArtistName: artist,
	}
	if uploader != "" {
		row.UploaderName = &uploader
	}
	if ident != nil {
		subj := ident.Subject
		row.AuthSubject = &subj
	}
	row.LegacyUserID = sub.LegacyUserID
	if sub.Audio.Size > 0 {
		size := sub.Audio.Size
		row.SizeBytes = &size
	}
	if sub.Audio.ContentType != "" {
		mt := sub.Audio.ContentType
		row.MimeType = &mt
	}

	// Audio upload is attempted once. On failure we substitute the fallback
	// asset and keep going; an upload failure never fails the request.
	audioKey := buildKey(audioKeyPrefix, sub.Audio.Filename, now)
	audioURL, err := s.store.Put(ctx, audioKey, sub.Audio.Reader, sub.Audio.Size, sub.Audio.ContentType)
	if err != nil {
		logger.Warnf("upload: audio store failed for %s, using fallback: %v", audioKey, err)
		metrics.UploadFallbacks.WithLabelValues("audio").Inc()
		audioKey = debugKeyPrefix + sanitizeFilename(sub.Audio.Filename)
		audioURL = s.assets.FallbackAudioURL
	}
	row.StorageKey = audioKey
	row.PublicURL = &audioURL

	// Same policy for the cover, independently. Absence of a cover also
	// resolves to the fallback so every track has a displayable reference.
	coverURL := s.assets.FallbackCoverURL
	if sub.Cover != nil {
		coverKey := buildKey(coverKeyPrefix, sub.Cover.Filename, now)
		url, err := s.store.Put(ctx, coverKey, sub.Cover.Reader, sub.Cover.Size, sub.Cover.ContentType)
		if err != nil {
			logger.Warnf("upload: cover store failed for %s, using fallback: %v", coverKey, err)
			metrics.UploadFallbacks.WithLabelValues("cover").Inc()
		} else {
			coverURL = url
			row.CoverPath = &coverKey
		}
	}
	row.CoverURL = &coverURL

	created, err := s.tracks.Insert(ctx, row)
	if err != nil {
		// The object may already be stored; the orphan is accepted, not
		// rolled back.
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, apperr.Persistence("failed to save track", err)
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()

	s.bcast.Broadcast("new-track", created)
	return created, nil
}

// resolveUploaderName applies the fallback chain: explicit field, provider
// profile name/email, legacy cookie name, then the artist name. The order is
// a contract, not a ranking to tune.
func resolveUploaderName(sub Submission, ident *middleware.Identity, artist string) string {
	if v := strings.TrimSpace(sub.UploaderName); v != "" {
		return v
	}
	if ident != nil {
		if ident.Name != "" {
			return ident.Name
		}
		if ident.Email != "" {
			return ident.Email
		}
	}
	if v := strings.TrimSpace(sub.LegacyName); v != "" {
		return v
	}
	return artist
}

// Recent lists the newest tracks for the browse surface.
func (s *Service) Recent(ctx context.Context, limit int) ([]db.Track, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := s.tracks.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperr.Persistence("failed to list tracks", err)
	}
	return list, nil
}
