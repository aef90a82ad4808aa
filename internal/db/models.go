package db

import "time"

// User is the durable local record for an external identity subject.
// Rows are append-only; at most one row exists per distinct AuthSubject.
type User struct {
	ID          int64     `json:"id"`
	AuthSubject string    `json:"auth_subject"`
	Name        *string   `json:"name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Track is the denormalized metadata row written once per successful upload.
type Track struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	ArtistName      string    `json:"artist_name"`
	UploaderName    *string   `json:"uploader_name,omitempty"`
	StorageKey      string    `json:"storage_key"`
	PublicURL       *string   `json:"public_url,omitempty"`
	CoverPath       *string   `json:"cover_path,omitempty"`
	CoverURL        *string   `json:"cover_url,omitempty"`
	SizeBytes       *int64    `json:"size_bytes,omitempty"`
	MimeType        *string   `json:"mime_type,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	AuthSubject     *string   `json:"auth_subject,omitempty"`
	LegacyUserID    *int64    `json:"legacy_user_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Playlist is owned exclusively by the creating user.
type Playlist struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlaylistTrack is one membership row as presented in a playlist listing.
// Track columns come from a LEFT JOIN, so a dangling track reference keeps
// the membership row with null fields instead of dropping it.
type PlaylistTrack struct {
	TrackID   int64    `json:"track_id"`
	Title     *string  `json:"title"`
	PublicURL *string  `json:"public_url"`
	CoverURL  *string  `json:"cover_url"`
	Duration  *float64 `json:"duration"`
}

// PlaylistWithTracks is the listing shape for one playlist.
type PlaylistWithTracks struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Tracks    []PlaylistTrack `json:"tracks"`
}
