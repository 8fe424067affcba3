// Package models contains the persistence document types.
package models

// PlaylistTrack is one stored entry of a saved playlist. The opaque token is
// kept so re-playing does not need a new search.
type PlaylistTrack struct {
	Encoded string `bson:"encoded"`
	Title   string `bson:"title"`
	Author  string `bson:"author"`
	Length  int64  `bson:"length"`
	URI     string `bson:"uri"`
}

// Playlist is a named track list saved for a guild.
type Playlist struct {
	GuildID string          `bson:"guild"`
	Name    string          `bson:"name"`
	Owner   string          `bson:"owner"`
	Tracks  []PlaylistTrack `bson:"tracks"`
	SavedAt int64           `bson:"savedAt"`
}
