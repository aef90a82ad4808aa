package tracks

import (
	"fmt"
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"My Song.mp3", "My_Song.mp3"},
		{"already_clean-1.flac", "already_clean-1.flac"},
		{"weird/\\:*?chars.mp3", "weirdchars.mp3"},
		{"tabs\tand  spaces.ogg", "tabs_and__spaces.ogg"},
		{"ünïcödé.mp3", "ncd.mp3"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	got := buildKey(audioKeyPrefix, "Night Drive.mp3", now)
	want := fmt.Sprintf("tracks/%d_Night_Drive.mp3", now.UnixMilli())
	if got != want {
		t.Fatalf("buildKey = %q, want %q", got, want)
	}

	cover := buildKey(coverKeyPrefix, "cover.png", now)
	if cover != fmt.Sprintf("covers/%d_cover.png", now.UnixMilli()) {
		t.Fatalf("unexpected cover key: %q", cover)
	}
}
