package db

// Schema is applied idempotently at startup. The unique constraints here are
// the authority for identity dedup and playlist membership idempotency; the
// application never takes in-process locks around them.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	auth_subject TEXT UNIQUE NOT NULL,
	name TEXT,
	email TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS tracks (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	artist_name TEXT NOT NULL DEFAULT 'Unknown Artist',
	uploader_name TEXT,
	storage_key TEXT NOT NULL,
	public_url TEXT,
	cover_path TEXT,
	cover_url TEXT,
	size_bytes BIGINT,
	mime_type TEXT,
	duration_seconds DOUBLE PRECISION,
	auth_subject TEXT,
	legacy_user_id BIGINT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS playlists (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS playlist_tracks (
	playlist_id BIGINT NOT NULL REFERENCES playlists(id),
	track_id BIGINT NOT NULL,
	added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (playlist_id, track_id)
);

CREATE INDEX IF NOT EXISTS idx_playlists_user ON playlists(user_id);
CREATE INDEX IF NOT EXISTS idx_tracks_created ON tracks(created_at DESC);
`
