package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SonataStudios/SonataLink/pkg/models"
)

const playlistCollection = "playlists"

var (
	ErrDatabaseNotConnected = errors.New("database not connected")
	ErrPlaylistNotFound     = errors.New("playlist not found")
)

func (d *Database) playlists() (*mongo.Collection, error) {
	coll := d.Collection(playlistCollection)
	if coll == nil {
		return nil, ErrDatabaseNotConnected
	}
	return coll, nil
}

// SavePlaylist stores a named playlist for a guild, replacing an existing one
// with the same name.
func (d *Database) SavePlaylist(playlist *models.Playlist) error {
	coll, err := d.playlists()
	if err != nil {
		return err
	}

	playlist.SavedAt = time.Now().UnixMilli()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"guild": playlist.GuildID, "name": playlist.Name}
	opts := options.Replace().SetUpsert(true)
	_, err = coll.ReplaceOne(ctx, filter, playlist, opts)
	return err
}

// GetPlaylist fetches a guild's playlist by name.
func (d *Database) GetPlaylist(guildID, name string) (*models.Playlist, error) {
	coll, err := d.playlists()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	playlist := new(models.Playlist)
	err = coll.FindOne(ctx, bson.M{"guild": guildID, "name": name}).Decode(playlist)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, err
	}
	return playlist, nil
}

// DeletePlaylist removes a guild's playlist by name.
func (d *Database) DeletePlaylist(guildID, name string) error {
	coll, err := d.playlists()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := coll.DeleteOne(ctx, bson.M{"guild": guildID, "name": name})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// ListPlaylists returns every playlist saved for a guild.
func (d *Database) ListPlaylists(guildID string) ([]*models.Playlist, error) {
	coll, err := d.playlists()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := coll.Find(ctx, bson.M{"guild": guildID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var playlists []*models.Playlist
	if err := cursor.All(ctx, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}
