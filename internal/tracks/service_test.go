package tracks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundrift/soundrift/internal/apperr"
	"github.com/soundrift/soundrift/internal/config"
	"github.com/soundrift/soundrift/internal/db"
	"github.com/soundrift/soundrift/pkg/middleware"
)

type fakeStore struct {
	fail bool
	puts []string
}

func (f *fakeStore) Put(ctx context.Context, key string, r io.Reader, size int64, ct string) (string, error) {
	if f.fail {
		return "", fmt.Errorf("store unavailable")
	}
	f.puts = append(f.puts, key)
	return "https://cdn.example.com/" + key, nil
}

type fakeTrackStore struct {
	lastInsert *db.Track
	insertErr  error
}

func (f *fakeTrackStore) Insert(ctx context.Context, track *db.Track) (*db.Track, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.lastInsert = track
	created := *track
	created.ID = 101
	created.CreatedAt = time.Now().UTC()
	return &created, nil
}

func (f *fakeTrackStore) Get(ctx context.Context, id int64) (*db.Track, error) {
	return nil, db.ErrNotFound
}

func (f *fakeTrackStore) ListRecent(ctx context.Context, limit int) ([]db.Track, error) {
	return []db.Track{}, nil
}

type fakeResolver struct {
	ident *middleware.Identity
}

func (f *fakeResolver) Resolve(ctx context.Context, raw string) (*middleware.Identity, error) {
	if raw == "" {
		return nil, nil
	}
	return f.ident, nil
}

type capturedEvent struct {
	name    string
	payload interface{}
}

type fakeBroadcaster struct {
	events []capturedEvent
}

func (f *fakeBroadcaster) Broadcast(event string, payload interface{}) {
	f.events = append(f.events, capturedEvent{name: event, payload: payload})
}

var testAssets = config.AssetsConfig{
	FallbackAudioURL: "/static/debug/silence.mp3",
	FallbackCoverURL: "/static/debug/cover.png",
}

func audioUpload() *Upload {
	return &Upload{Filename: "Night Drive.mp3", ContentType: "audio/mpeg", Size: 9, Reader: strings.NewReader("mp3-bytes")}
}

func newTestService(store *fakeStore, ts *fakeTrackStore, res middleware.IdentityResolver, b *fakeBroadcaster) *Service {
	return NewService(store, ts, res, b, testAssets)
}

func TestSubmit_HealthyStore(t *testing.T) {
	store := &fakeStore{}
	ts := &fakeTrackStore{}
	b := &fakeBroadcaster{}
	svc := newTestService(store, ts, &fakeResolver{}, b)

	track, err := svc.Submit(context.Background(), Submission{Title: "Night Drive", Audio: audioUpload()})
	require.NoError(t, err)
	require.NotNil(t, track)

	assert.True(t, strings.HasPrefix(track.StorageKey, "tracks/"), "storage key %q", track.StorageKey)
	require.NotNil(t, track.PublicURL)
	assert.Equal(t, "https://cdn.example.com/"+track.StorageKey, *track.PublicURL)
	// no cover supplied: fallback reference is still present
	require.NotNil(t, track.CoverURL)
	assert.Equal(t, testAssets.FallbackCoverURL, *track.CoverURL)
	assert.Equal(t, int64(101), track.ID)

	require.Len(t, b.events, 1)
	assert.Equal(t, "new-track", b.events[0].name)
	assert.Equal(t, track, b.events[0].payload)
}

func TestSubmit_StoreFailureFallsBack(t *testing.T) {
	store := &fakeStore{fail: true}
	ts := &fakeTrackStore{}
	svc := newTestService(store, ts, &fakeResolver{}, &fakeBroadcaster{})

	track, err := svc.Submit(context.Background(), Submission{Title: "Night Drive", Audio: audioUpload()})
	require.NoError(t, err, "an upload failure must not fail the request")

	assert.True(t, strings.HasPrefix(track.StorageKey, "debug/"), "storage key %q", track.StorageKey)
	require.NotNil(t, track.PublicURL)
	assert.Equal(t, testAssets.FallbackAudioURL, *track.PublicURL)
	require.NotNil(t, track.CoverURL)
	assert.Equal(t, testAssets.FallbackCoverURL, *track.CoverURL)
}

func TestSubmit_MissingTitleRejectedBeforeUpload(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeTrackStore{}, &fakeResolver{}, &fakeBroadcaster{})

	_, err := svc.Submit(context.Background(), Submission{Title: "   ", Audio: audioUpload()})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, store.puts, "no object-store call may happen on validation failure")
}

func TestSubmit_MissingAudioRejected(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeTrackStore{}, &fakeResolver{}, &fakeBroadcaster{})

	_, err := svc.Submit(context.Background(), Submission{Title: "Night Drive"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, store.puts)
}

func TestSubmit_ArtistDefaults(t *testing.T) {
	ts := &fakeTrackStore{}
	svc := newTestService(&fakeStore{}, ts, &fakeResolver{}, &fakeBroadcaster{})

	track, err := svc.Submit(context.Background(), Submission{Title: "Untitled Session", Audio: audioUpload()})
	require.NoError(t, err)
	assert.Equal(t, DefaultArtistName, track.ArtistName)
}

func TestSubmit_CoverUploaded(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeTrackStore{}, &fakeResolver{}, &fakeBroadcaster{})

	cover := &Upload{Filename: "art.png", ContentType: "image/png", Size: 4, Reader: strings.NewReader("png!")}
	track, err := svc.Submit(context.Background(), Submission{Title: "Night Drive", Audio: audioUpload(), Cover: cover})
	require.NoError(t, err)

	require.NotNil(t, track.CoverPath)
	assert.True(t, strings.HasPrefix(*track.CoverPath, "covers/"))
	require.NotNil(t, track.CoverURL)
	assert.Equal(t, "https://cdn.example.com/"+*track.CoverPath, *track.CoverURL)
	assert.Len(t, store.puts, 2)
}

func TestSubmit_PersistenceFailureSurfaces(t *testing.T) {
	ts := &fakeTrackStore{insertErr: fmt.Errorf("insert failed")}
	b := &fakeBroadcaster{}
	svc := newTestService(&fakeStore{}, ts, &fakeResolver{}, b)

	_, err := svc.Submit(context.Background(), Submission{Title: "Night Drive", Audio: audioUpload()})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindPersistence))
	assert.Empty(t, b.events, "no event for a failed ingestion")
}

func TestResolveUploaderName_FallbackChain(t *testing.T) {
	named := &middleware.Identity{UserID: 1, Subject: "s", Name: "Provider Name", Email: "p@example.com"}
	emailOnly := &middleware.Identity{UserID: 1, Subject: "s", Email: "p@example.com"}

	cases := []struct {
		name  string
		sub   Submission
		ident *middleware.Identity
		want  string
	}{
		{"explicit wins", Submission{UploaderName: "Explicit"}, named, "Explicit"},
		{"provider name second", Submission{}, named, "Provider Name"},
		{"provider email when no name", Submission{}, emailOnly, "p@example.com"},
		{"legacy cookie third", Submission{LegacyName: "Old Client"}, nil, "Old Client"},
		{"artist last", Submission{}, nil, "The Band"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveUploaderName(tc.sub, tc.ident, "The Band"))
		})
	}
}

func TestSubmit_IdentityAttached(t *testing.T) {
	ts := &fakeTrackStore{}
	res := &fakeResolver{ident: &middleware.Identity{UserID: 7, Subject: "sub-7", Name: "Seven"}}
	svc := newTestService(&fakeStore{}, ts, res, &fakeBroadcaster{})

	track, err := svc.Submit(context.Background(), Submission{Title: "Night Drive", Audio: audioUpload(), Token: "tok"})
	require.NoError(t, err)
	require.NotNil(t, track.AuthSubject)
	assert.Equal(t, "sub-7", *track.AuthSubject)
	require.NotNil(t, track.UploaderName)
	assert.Equal(t, "Seven", *track.UploaderName)
}
