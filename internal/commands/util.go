// Package commands provides general utility commands.
package commands

import (
	"fmt"
	"strings"

	"github.com/SonataStudios/SonataLink/pkg/config"
	"github.com/SonataStudios/SonataLink/pkg/database"
	"github.com/SonataStudios/SonataLink/pkg/discord"
)

// RegisterUtilCommands registers all utility commands.
func RegisterUtilCommands(client *discord.Client) {
	client.Handler.Register(discord.NewCommand(
		"ping",
		"Check the bot's latency",
		"util",
		func(ctx *discord.Context) error {
			latency := ctx.Client.Session.HeartbeatLatency().Milliseconds()
			return ctx.Reply(fmt.Sprintf("🏓 Pong! Latency: %dms", latency))
		},
	))

	client.Handler.Register(discord.NewCommand(
		"status",
		"Show the bot's status",
		"util",
		statusHandler,
	))

	client.Handler.Register(discord.NewCommand(
		"help",
		"Show help information",
		"util",
		func(ctx *discord.Context) error {
			return ctx.Reply(
				"📖 **SonataLink help**\n\n" +
					"**Available commands:**\n" +
					"• `/ping` - Check the latency\n" +
					"• `/status` - Bot and node status\n" +
					"• `/play <query>` - Play a song or URL\n" +
					"• `/pause` - Pause or resume\n" +
					"• `/skip` - Skip the current song\n" +
					"• `/stop` - Stop and clear the queue\n" +
					"• `/seek <seconds>` - Jump within the song\n" +
					"• `/volume <0-100>` - Adjust the volume\n" +
					"• `/loop <mode>` - Loop the track or queue\n" +
					"• `/shuffle` - Shuffle the queue\n" +
					"• `/queue` - Show the queue\n" +
					"• `/nowplaying` - Current song\n" +
					"• `/save-queue <name>` - Save the queue\n" +
					"• `/load-playlist <name>` - Load a saved playlist\n" +
					"• `/playlists` - List saved playlists",
			)
		},
	))
}

func statusHandler(ctx *discord.Context) error {
	dbStatus := "🔴 Offline"
	if db := database.Get(); db != nil && db.IsConnected {
		dbStatus = "🟢 Online"
	}

	var sb strings.Builder
	sb.WriteString("📊 **SonataLink status**\n")
	sb.WriteString(fmt.Sprintf("• Version: %s\n", config.Version))
	sb.WriteString(fmt.Sprintf("• Guilds: %d\n", ctx.Client.GuildCount()))
	sb.WriteString(fmt.Sprintf("• Database: %s\n", dbStatus))

	if manager != nil {
		for _, node := range manager.Nodes() {
			state := "🔴 Disconnected"
			if node.Connected() {
				state = fmt.Sprintf("🟢 Connected (%d players, penalty %d)",
					len(manager.Players()), node.Penalties())
			}
			sb.WriteString(fmt.Sprintf("• Node `%s`: %s\n", node.Identifier(), state))
		}
	}

	return ctx.Reply(sb.String())
}
