// Package discord wraps discordgo with the command and event plumbing the
// bot layer builds on.
package discord

import (
	"fmt"
	"sync"
	"time"

	"github.com/SonataStudios/SonataLink/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		logger.Debug(fmt.Sprintf(format, a...), "DiscordGo")
	}
}

// Client wraps discordgo.Session with command routing.
type Client struct {
	Session  *discordgo.Session
	Commands *CommandCollection
	Handler  *CommandHandler

	StartTime time.Time

	mu      sync.RWMutex
	isReady bool
}

// CommandCollection holds registered commands keyed by name.
type CommandCollection struct {
	mu       sync.RWMutex
	commands map[string]*Command
}

// NewCommandCollection creates an empty CommandCollection.
func NewCommandCollection() *CommandCollection {
	return &CommandCollection{commands: make(map[string]*Command)}
}

// Set adds or updates a command.
func (cc *CommandCollection) Set(name string, cmd *Command) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.commands[name] = cmd
}

// Get retrieves a command by name.
func (cc *CommandCollection) Get(name string) (*Command, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	cmd, ok := cc.commands[name]
	return cmd, ok
}

// Size returns the number of registered commands.
func (cc *CommandCollection) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.commands)
}

// All returns a copy of the command map.
func (cc *CommandCollection) All() map[string]*Command {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	result := make(map[string]*Command, len(cc.commands))
	for k, v := range cc.commands {
		result[k] = v
	}
	return result
}

var (
	client *Client
	once   sync.Once
)

// Init initializes the global client.
func Init(token string) (*Client, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token)
	})
	return client, err
}

// Get returns the global client.
func Get() *Client {
	return client
}

// NewClient creates a Client for the given bot token.
func NewClient(token string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	// Voice state tracking is mandatory, the player layer reads it.
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates

	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	c := &Client{
		Session:  session,
		Commands: NewCommandCollection(),
	}
	c.Handler = NewCommandHandler(c)
	return c, nil
}

// Start opens the gateway connection and registers slash commands once ready.
func (c *Client) Start() error {
	c.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		c.mu.Lock()
		c.isReady = true
		c.mu.Unlock()

		logger.Success("Logged in as "+r.User.Username, "Client")
		c.Handler.RegisterCommands()
	})
	c.Session.AddHandler(c.handleInteraction)

	c.StartTime = time.Now()
	return c.Session.Open()
}

func (c *Client) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		cmd, ok := c.Commands.Get(i.ApplicationCommandData().Name)
		if !ok || cmd.AutoComplete == nil {
			return
		}
		cmd.AutoComplete(&Context{Session: s, Interaction: i, Client: c})

	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		cmd, ok := c.Commands.Get(name)
		if !ok {
			logger.Warn("Command not found: "+name, "Client")
			return
		}

		ctx := &Context{Session: s, Interaction: i, Client: c}

		if cmd.InVoiceChannel && ctx.VoiceChannelID() == "" {
			ctx.ReplyEphemeral("You need to be in a voice channel to use this command.")
			return
		}

		if err := cmd.Run(ctx); err != nil {
			logger.Error("Error executing command "+name+": "+err.Error(), "Client")
		}
	}
}

// Stop closes the gateway session.
func (c *Client) Stop() error {
	c.mu.Lock()
	c.isReady = false
	c.mu.Unlock()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady reports whether the gateway handshake completed.
func (c *Client) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// GuildCount returns the number of guilds in the session state.
func (c *Client) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}
