package events

import (
	"fmt"

	"github.com/SonataStudios/SonataLink/pkg/discord"
	"github.com/SonataStudios/SonataLink/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterVoiceEvents registers voice activity logging.
func RegisterVoiceEvents(client *discord.Client) {
	client.Session.AddHandler(onVoiceStateUpdate)
}

func onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	switch {
	case v.ChannelID != "" && (v.BeforeUpdate == nil || v.BeforeUpdate.ChannelID == ""):
		logger.Debug(fmt.Sprintf("User %s joined voice channel %s in guild %s", v.UserID, v.ChannelID, v.GuildID), "Voice")

	case v.ChannelID == "" && v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID != "":
		logger.Debug(fmt.Sprintf("User %s left voice in guild %s", v.UserID, v.GuildID), "Voice")

	case v.BeforeUpdate != nil && v.ChannelID != v.BeforeUpdate.ChannelID:
		logger.Debug(fmt.Sprintf("User %s moved from %s to %s in guild %s",
			v.UserID, v.BeforeUpdate.ChannelID, v.ChannelID, v.GuildID), "Voice")
	}
}
