package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Context carries the state of one interaction through a command run.
type Context struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Client      *Client
}

// Command represents a slash command.
type Command struct {
	Name           string
	Description    string
	Category       string
	Options        []*discordgo.ApplicationCommandOption
	IsDev          bool
	InVoiceChannel bool
	Run            RunFunc
	AutoComplete   AutoCompleteFunc
}

// RunFunc executes a command.
type RunFunc func(ctx *Context) error

// AutoCompleteFunc handles autocomplete interactions.
type AutoCompleteFunc func(ctx *Context)

// NewCommand creates a Command with the required fields.
func NewCommand(name, description, category string, run RunFunc) *Command {
	return &Command{
		Name:        name,
		Description: description,
		Category:    category,
		Run:         run,
	}
}

// WithOptions sets the command options.
func (c *Command) WithOptions(opts ...*discordgo.ApplicationCommandOption) *Command {
	c.Options = opts
	return c
}

// AsDev restricts the command to the dev guild.
func (c *Command) AsDev() *Command {
	c.IsDev = true
	return c
}

// RequiresVoice makes the handler reject users outside a voice channel.
func (c *Command) RequiresVoice() *Command {
	c.InVoiceChannel = true
	return c
}

// WithAutoComplete sets the autocomplete handler.
func (c *Command) WithAutoComplete(fn AutoCompleteFunc) *Command {
	c.AutoComplete = fn
	return c
}

// ToApplicationCommand converts the command for registration with Discord.
func (c *Command) ToApplicationCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
	}
}

// Reply sends a plain text response.
func (ctx *Context) Reply(content string) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

// ReplyEmbed sends an embed response.
func (ctx *Context) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// ReplyEphemeral sends a response visible only to the invoking user.
func (ctx *Context) ReplyEphemeral(content string) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// Defer acknowledges the interaction without responding yet.
func (ctx *Context) Defer() error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// EditReply edits the original response.
func (ctx *Context) EditReply(content string) error {
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}

// EditReplyEmbed edits the original response with an embed.
func (ctx *Context) EditReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

// GetOption retrieves an option by name, descending into subcommands.
func (ctx *Context) GetOption(name string) *discordgo.ApplicationCommandInteractionDataOption {
	return findOption(ctx.Interaction.ApplicationCommandData().Options, name)
}

func findOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
		if len(opt.Options) > 0 {
			if found := findOption(opt.Options, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// GetStringOption retrieves a string option value.
func (ctx *Context) GetStringOption(name string) string {
	opt := ctx.GetOption(name)
	if opt == nil {
		return ""
	}
	return opt.StringValue()
}

// GetIntOption retrieves an integer option value.
func (ctx *Context) GetIntOption(name string) int64 {
	opt := ctx.GetOption(name)
	if opt == nil {
		return 0
	}
	return opt.IntValue()
}

// GetBoolOption retrieves a boolean option value.
func (ctx *Context) GetBoolOption(name string) bool {
	opt := ctx.GetOption(name)
	if opt == nil {
		return false
	}
	return opt.BoolValue()
}

// User returns the invoking user.
func (ctx *Context) User() *discordgo.User {
	if ctx.Interaction.Member != nil {
		return ctx.Interaction.Member.User
	}
	return ctx.Interaction.User
}

// GuildID returns the guild the interaction came from.
func (ctx *Context) GuildID() string {
	return ctx.Interaction.GuildID
}

// VoiceChannelID returns the voice channel the invoking user is in, or empty.
func (ctx *Context) VoiceChannelID() string {
	if ctx.Interaction.GuildID == "" {
		return ""
	}
	vs, err := ctx.Session.State.VoiceState(ctx.Interaction.GuildID, ctx.User().ID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}
