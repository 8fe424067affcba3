package events

import (
	"fmt"

	"github.com/SonataStudios/SonataLink/pkg/discord"
	"github.com/SonataStudios/SonataLink/pkg/lavalink"
	"github.com/SonataStudios/SonataLink/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterPlayerEvents wires player lifecycle events to log lines and chat
// notifications in each player's text channel.
func RegisterPlayerEvents(client *discord.Client, manager *lavalink.Manager) {
	manager.On(lavalink.EventNodeConnect, func(e lavalink.Event) {
		logger.Success("Node connected: "+e.Node.Identifier(), "Lavalink")
	})

	manager.On(lavalink.EventNodeDisconnect, func(e lavalink.Event) {
		logger.Warn(fmt.Sprintf("Node %s disconnected (code %d)", e.Node.Identifier(), e.Code), "Lavalink")
	})

	manager.On(lavalink.EventNodeReconnect, func(e lavalink.Event) {
		logger.Info("Reconnecting to node "+e.Node.Identifier(), "Lavalink")
	})

	manager.On(lavalink.EventNodeError, func(e lavalink.Event) {
		logger.Error(fmt.Sprintf("Node %s error: %v", e.Node.Identifier(), e.Err), "Lavalink")
	})

	manager.On(lavalink.EventTrackStart, func(e lavalink.Event) {
		if e.Player == nil || e.Track == nil {
			return
		}
		notify(client, e.Player, &discordgo.MessageEmbed{
			Color:       0x5865F2,
			Title:       "🎵 Now playing",
			Description: fmt.Sprintf("[%s](%s) - %s", e.Track.Info.Title, e.Track.Info.URI, e.Track.Info.Author),
		})
	})

	manager.On(lavalink.EventTrackStuck, func(e lavalink.Event) {
		if e.Player == nil {
			return
		}
		logger.Warn("Track stuck in guild "+e.Player.GuildID(), "Lavalink")
		notifyText(client, e.Player, "⚠️ The track got stuck, skipping.")
	})

	manager.On(lavalink.EventTrackError, func(e lavalink.Event) {
		if e.Player == nil {
			return
		}
		logger.Error(fmt.Sprintf("Track error in guild %s: %v", e.Player.GuildID(), e.Err), "Lavalink")
		notifyText(client, e.Player, "❌ The track failed to play, skipping.")
	})

	manager.On(lavalink.EventQueueEnd, func(e lavalink.Event) {
		if e.Player == nil {
			return
		}
		notifyText(client, e.Player, "📭 Queue finished. Add more songs with /play.")
	})
}

func notify(client *discord.Client, player *lavalink.Player, embed *discordgo.MessageEmbed) {
	channelID := player.TextChannel()
	if channelID == "" || client == nil {
		return
	}
	if _, err := client.Session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		logger.Debug("Error sending notification: "+err.Error(), "Events")
	}
}

func notifyText(client *discord.Client, player *lavalink.Player, content string) {
	channelID := player.TextChannel()
	if channelID == "" || client == nil {
		return
	}
	if _, err := client.Session.ChannelMessageSend(channelID, content); err != nil {
		logger.Debug("Error sending notification: "+err.Error(), "Events")
	}
}
