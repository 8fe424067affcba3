package lavalink

import "errors"

// Sentinel errors returned by the client.
var (
	// ErrNoNodesAvailable is returned when no configured node is connected.
	ErrNoNodesAvailable = errors.New("lavalink: no nodes available")
	// ErrNodeNotFound is returned when a node identifier matches nothing.
	ErrNodeNotFound = errors.New("lavalink: node not found")
	// ErrNodeDead is reported after the reconnect attempt ceiling is hit.
	ErrNodeDead = errors.New("lavalink: node reconnect attempts exhausted")
	// ErrInvalidLoopMode is returned for loop modes outside none/track/queue.
	ErrInvalidLoopMode = errors.New("lavalink: loop mode must be none, track or queue")
	// ErrInvalidPosition is returned for negative seek positions.
	ErrInvalidPosition = errors.New("lavalink: position must not be negative")
	// ErrInvalidVolume is returned for non-numeric volume values.
	ErrInvalidVolume = errors.New("lavalink: volume must be a number")
	// ErrTrackNotFound is returned when the node cannot decode a track.
	ErrTrackNotFound = errors.New("lavalink: track not found")
	// ErrPlayerDestroyed is returned by operations on a destroyed player.
	ErrPlayerDestroyed = errors.New("lavalink: player destroyed")
	// ErrMissingEndpoint signals a voice-server payload without an endpoint.
	ErrMissingEndpoint = errors.New("lavalink: voice server update without endpoint")
	// ErrResolveFailed is reported when a lazy track resolve yields nothing.
	ErrResolveFailed = errors.New("lavalink: could not resolve track")
)
