package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SonataStudios/SonataLink/pkg/database"
	"github.com/SonataStudios/SonataLink/pkg/discord"
	"github.com/SonataStudios/SonataLink/pkg/lavalink"
	"github.com/SonataStudios/SonataLink/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// RegisterPlaylistCommands registers the saved-playlist commands.
func RegisterPlaylistCommands(client *discord.Client) {
	nameOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Playlist name",
		Required:    true,
	}

	client.Handler.Register(discord.NewCommand(
		"save-queue",
		"Save the current queue as a playlist",
		"playlist",
		saveQueueHandler,
	).WithOptions(nameOption))

	client.Handler.Register(discord.NewCommand(
		"load-playlist",
		"Load a saved playlist into the queue",
		"playlist",
		loadPlaylistHandler,
	).WithOptions(nameOption).RequiresVoice())

	client.Handler.Register(discord.NewCommand(
		"delete-playlist",
		"Delete a saved playlist",
		"playlist",
		deletePlaylistHandler,
	).WithOptions(nameOption))

	client.Handler.Register(discord.NewCommand(
		"playlists",
		"List the playlists saved for this server",
		"playlist",
		listPlaylistsHandler,
	))
}

func saveQueueHandler(ctx *discord.Context) error {
	name := ctx.GetStringOption("name")
	db := database.Get()
	if db == nil {
		return ctx.ReplyEphemeral("❌ The database is not available.")
	}

	player := requirePlayer(ctx)
	if player == nil {
		return nil
	}

	tracks := make([]models.PlaylistTrack, 0)
	if current := player.Current(); current != nil {
		tracks = append(tracks, toPlaylistTrack(current))
	}
	for _, track := range player.QueueTracks() {
		tracks = append(tracks, toPlaylistTrack(track))
	}
	if len(tracks) == 0 {
		return ctx.ReplyEphemeral("📭 There is nothing to save.")
	}

	err := db.SavePlaylist(&models.Playlist{
		GuildID: ctx.GuildID(),
		Name:    name,
		Owner:   ctx.User().ID,
		Tracks:  tracks,
	})
	if err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error saving: %v", err))
	}

	return ctx.Reply(fmt.Sprintf("💾 Saved **%d** tracks as **%s**.", len(tracks), name))
}

func loadPlaylistHandler(ctx *discord.Context) error {
	name := ctx.GetStringOption("name")
	db := database.Get()
	if db == nil {
		return ctx.ReplyEphemeral("❌ The database is not available.")
	}
	if manager == nil {
		return ctx.ReplyEphemeral("❌ The music system is not available.")
	}

	playlist, err := db.GetPlaylist(ctx.GuildID(), name)
	if err != nil {
		if errors.Is(err, database.ErrPlaylistNotFound) {
			return ctx.ReplyEphemeral(fmt.Sprintf("❌ No playlist named **%s** exists.", name))
		}
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error loading: %v", err))
	}

	player, err := manager.CreatePlayer(lavalink.CreatePlayerOptions{
		GuildID:  ctx.GuildID(),
		VoiceID:  ctx.VoiceChannelID(),
		TextID:   ctx.Interaction.ChannelID,
		SelfDeaf: true,
	})
	if err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error: %v", err))
	}

	for _, t := range playlist.Tracks {
		player.Add(&lavalink.Track{
			Encoded: t.Encoded,
			Info: lavalink.TrackInfo{
				Title:  t.Title,
				Author: t.Author,
				Length: t.Length,
				URI:    t.URI,
			},
		})
	}
	startIfIdle(player)

	return ctx.Reply(fmt.Sprintf("🎵 Loaded **%d** tracks from **%s**.", len(playlist.Tracks), name))
}

func deletePlaylistHandler(ctx *discord.Context) error {
	name := ctx.GetStringOption("name")
	db := database.Get()
	if db == nil {
		return ctx.ReplyEphemeral("❌ The database is not available.")
	}

	if err := db.DeletePlaylist(ctx.GuildID(), name); err != nil {
		if errors.Is(err, database.ErrPlaylistNotFound) {
			return ctx.ReplyEphemeral(fmt.Sprintf("❌ No playlist named **%s** exists.", name))
		}
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error deleting: %v", err))
	}

	return ctx.Reply(fmt.Sprintf("🗑️ Playlist **%s** deleted.", name))
}

func listPlaylistsHandler(ctx *discord.Context) error {
	db := database.Get()
	if db == nil {
		return ctx.ReplyEphemeral("❌ The database is not available.")
	}

	playlists, err := db.ListPlaylists(ctx.GuildID())
	if err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error: %v", err))
	}
	if len(playlists) == 0 {
		return ctx.Reply("📭 This server has no saved playlists.")
	}

	var sb strings.Builder
	sb.WriteString("📋 **Saved playlists**\n\n")
	for _, p := range playlists {
		sb.WriteString(fmt.Sprintf("• **%s** - %d tracks\n", p.Name, len(p.Tracks)))
	}
	return ctx.Reply(sb.String())
}

func toPlaylistTrack(track *lavalink.Track) models.PlaylistTrack {
	return models.PlaylistTrack{
		Encoded: track.Encoded,
		Title:   track.Info.Title,
		Author:  track.Info.Author,
		Length:  track.Info.Length,
		URI:     track.Info.URI,
	}
}
