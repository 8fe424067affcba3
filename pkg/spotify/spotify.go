// Package spotify expands Spotify URLs into "artist - title" track queries.
// Spotify does not expose audio; the resulting queries are resolved into
// playable tracks through the Lavalink search endpoint.
package spotify

import (
	"context"
	"fmt"
	"regexp"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

var urlPattern = regexp.MustCompile(
	`^(?:https://open\.spotify\.com/(?:user/[A-Za-z0-9]+/)?|spotify:)(album|playlist|track|artist)(?:[/:])([A-Za-z0-9]+).*$`)

// Track is one entry of an expanded Spotify resource.
type Track struct {
	Name   string
	Artist string
}

// Query is the search string fed to the Lavalink resolver.
func (t Track) Query() string {
	if t.Artist == "" {
		return t.Name
	}
	return t.Artist + " - " + t.Name
}

// PlaylistMeta describes the resource a track list came from.
type PlaylistMeta struct {
	Title string
	Kind  string
}

// Options configures the resolver.
type Options struct {
	ClientID     string
	ClientSecret string

	// Expansion ceilings; zero means no limit.
	PlaylistLimit int
	AlbumLimit    int
	ArtistLimit   int

	// SearchMarket is the market used for artist top tracks, default US.
	SearchMarket string
}

// Resolver expands Spotify URLs via the Web API using the client-credentials
// flow.
type Resolver struct {
	client *spotify.Client
	opts   Options
}

// New creates a resolver authenticating with client credentials.
func New(opts Options) (*Resolver, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("spotify: client id and secret are required")
	}
	if opts.SearchMarket == "" {
		opts.SearchMarket = "US"
	}

	cfg := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := cfg.Client(context.Background())
	return &Resolver{
		client: spotify.New(httpClient, spotify.WithRetry(true)),
		opts:   opts,
	}, nil
}

// IsSpotifyURL reports whether a query is a Spotify resource URL or URI.
func IsSpotifyURL(raw string) bool {
	return urlPattern.MatchString(raw)
}

// ParseURL extracts the resource kind and id from a Spotify URL or URI.
func ParseURL(raw string) (kind string, id spotify.ID, err error) {
	match := urlPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", "", fmt.Errorf("spotify: not a spotify URL: %q", raw)
	}
	return match[1], spotify.ID(match[2]), nil
}

// Resolve expands a Spotify URL into track queries.
func (r *Resolver) Resolve(ctx context.Context, raw string) ([]Track, *PlaylistMeta, error) {
	kind, id, err := ParseURL(raw)
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case "track":
		track, err := r.getTrack(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return []Track{track}, &PlaylistMeta{Title: track.Name, Kind: kind}, nil
	case "album":
		return r.getAlbum(ctx, id)
	case "playlist":
		return r.getPlaylist(ctx, id)
	case "artist":
		return r.getArtistTop(ctx, id)
	}
	return nil, nil, fmt.Errorf("spotify: unsupported resource type %q", kind)
}

func (r *Resolver) getTrack(ctx context.Context, id spotify.ID) (Track, error) {
	full, err := r.client.GetTrack(ctx, id)
	if err != nil {
		return Track{}, fmt.Errorf("spotify: %w", err)
	}
	return Track{Name: full.Name, Artist: artistName(full.Artists)}, nil
}

func (r *Resolver) getAlbum(ctx context.Context, id spotify.ID) ([]Track, *PlaylistMeta, error) {
	album, err := r.client.GetAlbum(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("spotify: %w", err)
	}

	page, err := r.client.GetAlbumTracks(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("spotify: %w", err)
	}

	out := make([]Track, 0, page.Total)
	for {
		for _, t := range page.Tracks {
			if r.opts.AlbumLimit > 0 && len(out) >= r.opts.AlbumLimit {
				break
			}
			out = append(out, Track{Name: t.Name, Artist: artistName(t.Artists)})
		}
		if r.opts.AlbumLimit > 0 && len(out) >= r.opts.AlbumLimit {
			break
		}
		if err := r.client.NextPage(ctx, page); err != nil {
			break
		}
	}
	return out, &PlaylistMeta{Title: album.Name, Kind: "album"}, nil
}

func (r *Resolver) getPlaylist(ctx context.Context, id spotify.ID) ([]Track, *PlaylistMeta, error) {
	playlist, err := r.client.GetPlaylist(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("spotify: %w", err)
	}

	page, err := r.client.GetPlaylistItems(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("spotify: %w", err)
	}

	out := make([]Track, 0, page.Total)
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			if r.opts.PlaylistLimit > 0 && len(out) >= r.opts.PlaylistLimit {
				break
			}
			t := item.Track.Track
			out = append(out, Track{Name: t.Name, Artist: artistName(t.Artists)})
		}
		if r.opts.PlaylistLimit > 0 && len(out) >= r.opts.PlaylistLimit {
			break
		}
		if err := r.client.NextPage(ctx, page); err != nil {
			break
		}
	}
	return out, &PlaylistMeta{Title: playlist.Name, Kind: "playlist"}, nil
}

func (r *Resolver) getArtistTop(ctx context.Context, id spotify.ID) ([]Track, *PlaylistMeta, error) {
	artist, err := r.client.GetArtist(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("spotify: %w", err)
	}

	top, err := r.client.GetArtistsTopTracks(ctx, id, r.opts.SearchMarket)
	if err != nil {
		return nil, nil, fmt.Errorf("spotify: %w", err)
	}

	out := make([]Track, 0, len(top))
	for _, t := range top {
		if r.opts.ArtistLimit > 0 && len(out) >= r.opts.ArtistLimit {
			break
		}
		out = append(out, Track{Name: t.Name, Artist: artistName(t.Artists)})
	}
	return out, &PlaylistMeta{Title: artist.Name, Kind: "artist"}, nil
}

func artistName(artists []spotify.SimpleArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}
