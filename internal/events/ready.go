package events

import (
	"fmt"

	"github.com/SonataStudios/SonataLink/pkg/discord"
	"github.com/SonataStudios/SonataLink/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvent registers the ready event handler.
func RegisterReadyEvent(client *discord.Client) {
	client.Session.AddHandler(onReady)
}

func onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Success(fmt.Sprintf("Bot connected: %s#%s", r.User.Username, r.User.Discriminator), "Ready")
	logger.Info(fmt.Sprintf("Serving %d guilds", len(r.Guilds)), "Ready")

	if err := s.UpdateGameStatus(0, "🎵 Music with /play"); err != nil {
		logger.Error(fmt.Sprintf("Error setting presence: %v", err), "Ready")
	}
}
