// Package commands provides the music commands.
package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/SonataStudios/SonataLink/pkg/discord"
	"github.com/SonataStudios/SonataLink/pkg/lavalink"
	"github.com/SonataStudios/SonataLink/pkg/spotify"
	"github.com/bwmarrin/discordgo"
)

var minOptionFloat = 0.0

// RegisterMusicCommands registers all music commands.
func RegisterMusicCommands(client *discord.Client) {
	client.Handler.Register(discord.NewCommand(
		"play",
		"Play a song or add it to the queue",
		"music",
		playHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "query",
			Description: "Song name or URL",
			Required:    true,
		},
	).RequiresVoice())

	client.Handler.Register(discord.NewCommand(
		"pause",
		"Pause or resume playback",
		"music",
		pauseHandler,
	).RequiresVoice())

	client.Handler.Register(discord.NewCommand(
		"skip",
		"Skip to the next song",
		"music",
		skipHandler,
	).RequiresVoice())

	client.Handler.Register(discord.NewCommand(
		"stop",
		"Stop playback and clear the queue",
		"music",
		stopHandler,
	).RequiresVoice())

	client.Handler.Register(discord.NewCommand(
		"seek",
		"Seek to a position in the current song",
		"music",
		seekHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "seconds",
			Description: "Position in seconds",
			Required:    true,
			MinValue:    &minOptionFloat,
		},
	).RequiresVoice())

	client.Handler.Register(discord.NewCommand(
		"volume",
		"Adjust the playback volume",
		"music",
		volumeHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "level",
			Description: "Volume level (0-100)",
			Required:    true,
			MinValue:    &minOptionFloat,
			MaxValue:    100,
		},
	).RequiresVoice())

	client.Handler.Register(discord.NewCommand(
		"loop",
		"Set the loop mode",
		"music",
		loopHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mode",
			Description: "Loop mode",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "none", Value: "none"},
				{Name: "track", Value: "track"},
				{Name: "queue", Value: "queue"},
			},
		},
	).RequiresVoice())

	client.Handler.Register(discord.NewCommand(
		"shuffle",
		"Shuffle the queue",
		"music",
		shuffleHandler,
	).RequiresVoice())

	client.Handler.Register(discord.NewCommand(
		"queue",
		"Show the playback queue",
		"music",
		queueHandler,
	))

	client.Handler.Register(discord.NewCommand(
		"nowplaying",
		"Show the song currently playing",
		"music",
		nowPlayingHandler,
	))
}

func playHandler(ctx *discord.Context) error {
	query := ctx.GetStringOption("query")
	if query == "" {
		return ctx.ReplyEphemeral("❌ You need to provide a song to play.")
	}
	if manager == nil {
		return ctx.ReplyEphemeral("❌ The music system is not available.")
	}

	ctx.Defer()

	player, err := manager.CreatePlayer(lavalink.CreatePlayerOptions{
		GuildID:  ctx.GuildID(),
		VoiceID:  ctx.VoiceChannelID(),
		TextID:   ctx.Interaction.ChannelID,
		SelfDeaf: true,
	})
	if err != nil {
		return ctx.EditReply(fmt.Sprintf("❌ Error: %v", err))
	}

	if resolver != nil && spotify.IsSpotifyURL(query) {
		return playSpotify(ctx, player, query)
	}

	result, err := manager.Search(query, "")
	if err != nil {
		return ctx.EditReply(fmt.Sprintf("❌ Search error: %v", err))
	}

	switch {
	case result.LoadType == lavalink.LoadTypeNoMatches || len(result.Tracks) == 0:
		return ctx.EditReply("❌ No results found.")

	case result.LoadType == lavalink.LoadTypeLoadFailed:
		msg := "the node could not load the track"
		if result.Exception != nil {
			msg = result.Exception.Message
		}
		return ctx.EditReply("❌ Error: " + msg)

	case result.LoadType == lavalink.LoadTypePlaylistLoaded:
		for _, track := range result.Tracks {
			player.Add(track)
		}
		startIfIdle(player)

		name := "playlist"
		if result.PlaylistInfo != nil && result.PlaylistInfo.Name != "" {
			name = result.PlaylistInfo.Name
		}
		return ctx.EditReply(fmt.Sprintf("🎵 Added **%d** tracks from **%s** to the queue.", len(result.Tracks), name))

	default:
		track := result.Tracks[0]
		player.Add(track)
		startIfIdle(player)
		return ctx.EditReplyEmbed(queuedEmbed(track))
	}
}

// playSpotify enqueues Spotify tracks unresolved. The player resolves each
// one against the node right before it plays.
func playSpotify(ctx *discord.Context, player *lavalink.Player, query string) error {
	tracks, meta, err := resolver.Resolve(context.Background(), query)
	if err != nil {
		return ctx.EditReply(fmt.Sprintf("❌ Spotify error: %v", err))
	}
	if len(tracks) == 0 {
		return ctx.EditReply("❌ No results found.")
	}

	for _, t := range tracks {
		player.Add(&lavalink.Track{
			Info: lavalink.TrackInfo{
				Title:  t.Name,
				Author: t.Artist,
			},
		})
	}
	startIfIdle(player)

	if meta != nil {
		return ctx.EditReply(fmt.Sprintf("🎵 Added **%d** tracks from %s **%s** to the queue.", len(tracks), meta.Kind, meta.Title))
	}
	return ctx.EditReply(fmt.Sprintf("🎵 Added **%s - %s** to the queue.", tracks[0].Artist, tracks[0].Name))
}

// startIfIdle kicks off playback when nothing is playing and nothing was
// left paused.
func startIfIdle(player *lavalink.Player) {
	if player.Current() == nil && !player.Playing() {
		player.Play(lavalink.PlayOptions{})
	}
}

func pauseHandler(ctx *discord.Context) error {
	player := requirePlayer(ctx)
	if player == nil {
		return nil
	}

	paused := player.Paused()
	if err := player.Pause(!paused); err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error: %v", err))
	}

	if paused {
		return ctx.Reply("▶️ Playback resumed.")
	}
	return ctx.Reply("⏸️ Playback paused.")
}

func skipHandler(ctx *discord.Context) error {
	player := requirePlayer(ctx)
	if player == nil {
		return nil
	}
	if player.Current() == nil {
		return ctx.ReplyEphemeral("🔇 Nothing is playing.")
	}

	player.Stop()
	return ctx.Reply("⏭️ Song skipped.")
}

func stopHandler(ctx *discord.Context) error {
	player := requirePlayer(ctx)
	if player == nil {
		return nil
	}

	manager.RemovePlayer(ctx.GuildID())
	return ctx.Reply("⏹️ Playback stopped and queue cleared.")
}

func seekHandler(ctx *discord.Context) error {
	player := requirePlayer(ctx)
	if player == nil {
		return nil
	}

	seconds := ctx.GetIntOption("seconds")
	if err := player.SeekTo(seconds * 1000); err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error: %v", err))
	}
	return ctx.Reply(fmt.Sprintf("⏩ Jumped to %s.", formatDuration(seconds*1000)))
}

func volumeHandler(ctx *discord.Context) error {
	player := requirePlayer(ctx)
	if player == nil {
		return nil
	}

	level := ctx.GetIntOption("level")
	if err := player.SetVolume(float64(level) / 100); err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error: %v", err))
	}
	return ctx.Reply(fmt.Sprintf("🔊 Volume set to %d%%.", level))
}

func loopHandler(ctx *discord.Context) error {
	player := requirePlayer(ctx)
	if player == nil {
		return nil
	}

	mode := ctx.GetStringOption("mode")
	if err := player.SetLoop(mode); err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error: %v", err))
	}
	return ctx.Reply(fmt.Sprintf("🔁 Loop mode set to **%s**.", mode))
}

func shuffleHandler(ctx *discord.Context) error {
	player := requirePlayer(ctx)
	if player == nil {
		return nil
	}

	player.Shuffle()
	return ctx.Reply("🔀 Queue shuffled.")
}

func queueHandler(ctx *discord.Context) error {
	if manager == nil {
		return ctx.ReplyEphemeral("❌ The music system is not available.")
	}
	player := manager.Player(ctx.GuildID())
	if player == nil {
		return ctx.Reply("📭 The queue is empty.")
	}

	current := player.Current()
	tracks := player.QueueTracks()
	if current == nil && len(tracks) == 0 {
		return ctx.Reply("📭 The queue is empty.")
	}

	var sb strings.Builder
	sb.WriteString("📋 **Queue**\n\n")

	if current != nil {
		sb.WriteString(fmt.Sprintf("🎵 **Now playing:** [%s](%s) - %s\n\n",
			current.Info.Title, current.Info.URI, formatDuration(current.Info.Length)))
	}

	if len(tracks) > 0 {
		sb.WriteString("**Up next:**\n")
		for i, track := range tracks {
			if i >= 10 {
				sb.WriteString(fmt.Sprintf("\n... and %d more", len(tracks)-10))
				break
			}
			sb.WriteString(fmt.Sprintf("%d. %s - %s\n",
				i+1, track.Info.Title, formatDuration(track.Info.Length)))
		}
	}

	return ctx.Reply(sb.String())
}

func nowPlayingHandler(ctx *discord.Context) error {
	if manager == nil {
		return ctx.ReplyEphemeral("❌ The music system is not available.")
	}
	player := manager.Player(ctx.GuildID())
	if player == nil || player.Current() == nil {
		return ctx.Reply("🔇 Nothing is playing.")
	}

	track := player.Current()
	position := player.Position()

	progress := ""
	if track.Info.Length > 0 {
		progress = fmt.Sprintf(" (%.1f%%)", float64(position)/float64(track.Info.Length)*100)
	}

	embed := &discordgo.MessageEmbed{
		Color:       0x5865F2,
		Title:       "🎵 Now playing",
		Description: fmt.Sprintf("[%s](%s)", track.Info.Title, track.Info.URI),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: track.Info.Author, Inline: true},
			{
				Name:   "Progress",
				Value:  fmt.Sprintf("%s / %s%s", formatDuration(position), formatDuration(track.Info.Length), progress),
				Inline: true,
			},
			{Name: "Loop", Value: string(player.Loop()), Inline: true},
		},
	}
	return ctx.ReplyEmbed(embed)
}

// requirePlayer fetches the guild player or replies with an error. A nil
// return means the reply was already sent.
func requirePlayer(ctx *discord.Context) *lavalink.Player {
	if manager == nil {
		ctx.ReplyEphemeral("❌ The music system is not available.")
		return nil
	}
	player := manager.Player(ctx.GuildID())
	if player == nil {
		ctx.ReplyEphemeral("🔇 Nothing is playing in this server.")
		return nil
	}
	return player
}

func queuedEmbed(track *lavalink.Track) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       0x5865F2,
		Title:       "🎵 Added to the queue",
		Description: fmt.Sprintf("[%s](%s)", track.Info.Title, track.Info.URI),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: track.Info.Author, Inline: true},
			{Name: "Duration", Value: formatDuration(track.Info.Length), Inline: true},
		},
	}
}

// formatDuration formats milliseconds as m:ss.
func formatDuration(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
