package spotify

import (
	"testing"
)

func TestIsSpotifyURL(t *testing.T) {
	cases := map[string]bool{
		"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT":              true,
		"https://open.spotify.com/album/1ATL5GLyefJaxhQzSPVrLX":              true,
		"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M":           true,
		"https://open.spotify.com/artist/0OdUWJ0sBjDrqHygGUXeCF":             true,
		"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=abc123":    true,
		"https://open.spotify.com/user/spotify/playlist/37i9dQZF1DXcBWIGoYB": true,
		"spotify:track:4cOdK2wGLETKBW3PvgPWqT":                               true,
		"spotify:album:1ATL5GLyefJaxhQzSPVrLX":                               true,
		"https://youtube.com/watch?v=dQw4w9WgXcQ":                            false,
		"https://open.spotify.com/show/4rOoJ6Egrf8K2IrywzwOMk":               false,
		"never gonna give you up":                                            false,
	}

	for in, want := range cases {
		if got := IsSpotifyURL(in); got != want {
			t.Errorf("IsSpotifyURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseURL(t *testing.T) {
	cases := []struct {
		in   string
		kind string
		id   string
	}{
		{"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT", "track", "4cOdK2wGLETKBW3PvgPWqT"},
		{"https://open.spotify.com/album/1ATL5GLyefJaxhQzSPVrLX", "album", "1ATL5GLyefJaxhQzSPVrLX"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=x", "playlist", "37i9dQZF1DXcBWIGoYBM5M"},
		{"spotify:artist:0OdUWJ0sBjDrqHygGUXeCF", "artist", "0OdUWJ0sBjDrqHygGUXeCF"},
	}

	for _, tc := range cases {
		kind, id, err := ParseURL(tc.in)
		if err != nil {
			t.Errorf("ParseURL(%q) error: %v", tc.in, err)
			continue
		}
		if kind != tc.kind {
			t.Errorf("ParseURL(%q) kind = %q, want %q", tc.in, kind, tc.kind)
		}
		if string(id) != tc.id {
			t.Errorf("ParseURL(%q) id = %q, want %q", tc.in, id, tc.id)
		}
	}

	if _, _, err := ParseURL("https://example.com/track/123"); err == nil {
		t.Error("ParseURL on a non-spotify URL should fail")
	}
}

func TestTrackQuery(t *testing.T) {
	full := Track{Name: "Song", Artist: "Artist"}
	if got := full.Query(); got != "Artist - Song" {
		t.Errorf("Query() = %q, want %q", got, "Artist - Song")
	}

	nameOnly := Track{Name: "Song"}
	if got := nameOnly.Query(); got != "Song" {
		t.Errorf("Query() = %q, want %q", got, "Song")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("New without credentials should fail")
	}
	if _, err := New(Options{ClientID: "id"}); err == nil {
		t.Error("New without a secret should fail")
	}

	r, err := New(Options{ClientID: "id", ClientSecret: "secret"})
	if err != nil {
		t.Fatalf("New with credentials failed: %v", err)
	}
	if r.opts.SearchMarket != "US" {
		t.Errorf("SearchMarket default = %q, want US", r.opts.SearchMarket)
	}
}
