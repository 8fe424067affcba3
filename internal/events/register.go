// Package events wires gateway and player events to logging and chat
// notifications.
package events

import (
	"github.com/SonataStudios/SonataLink/pkg/discord"
	"github.com/SonataStudios/SonataLink/pkg/lavalink"
	"github.com/SonataStudios/SonataLink/pkg/logger"
)

// RegisterAll registers every event handler.
func RegisterAll(client *discord.Client, manager *lavalink.Manager) {
	logger.System("Registering event handlers...", "Events")

	RegisterReadyEvent(client)
	RegisterVoiceEvents(client)
	RegisterPlayerEvents(client, manager)

	logger.Success("Event handlers registered", "Events")
}
