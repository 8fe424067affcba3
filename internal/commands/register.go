// Package commands wires the bot's slash commands to the player layer.
package commands

import (
	"github.com/SonataStudios/SonataLink/pkg/discord"
	"github.com/SonataStudios/SonataLink/pkg/lavalink"
	"github.com/SonataStudios/SonataLink/pkg/spotify"
)

var (
	manager  *lavalink.Manager
	resolver *spotify.Resolver
)

// RegisterAll registers every command category with the client. The Spotify
// resolver is optional, without it Spotify URLs fall back to a plain search.
func RegisterAll(client *discord.Client, mgr *lavalink.Manager, sp *spotify.Resolver) {
	manager = mgr
	resolver = sp

	RegisterUtilCommands(client)
	RegisterMusicCommands(client)
	RegisterPlaylistCommands(client)
}
