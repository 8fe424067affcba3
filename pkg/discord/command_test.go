package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestCommandCreation(t *testing.T) {
	handler := func(ctx *Context) error {
		return nil
	}

	cmd := NewCommand("test", "Test command", "test", handler)
	if cmd == nil {
		t.Fatal("NewCommand returned nil")
	}

	if cmd.Name != "test" {
		t.Errorf("Name = %v, want %v", cmd.Name, "test")
	}
	if cmd.Description != "Test command" {
		t.Errorf("Description = %v, want %v", cmd.Description, "Test command")
	}
	if cmd.Category != "test" {
		t.Errorf("Category = %v, want %v", cmd.Category, "test")
	}
	if cmd.Run == nil {
		t.Error("Run function is nil")
	}
}

func TestCommandBuilders(t *testing.T) {
	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "query",
		Description: "A query",
	}

	cmd := NewCommand("play", "Play a song", "music", func(*Context) error { return nil }).
		WithOptions(option).
		RequiresVoice().
		AsDev()

	if len(cmd.Options) != 1 || cmd.Options[0] != option {
		t.Errorf("Options = %v, want the provided option", cmd.Options)
	}
	if !cmd.InVoiceChannel {
		t.Error("RequiresVoice did not set the flag")
	}
	if !cmd.IsDev {
		t.Error("AsDev did not set the flag")
	}
}

func TestToApplicationCommand(t *testing.T) {
	cmd := NewCommand("play", "Play a song", "music", func(*Context) error { return nil }).
		WithOptions(&discordgo.ApplicationCommandOption{
			Type: discordgo.ApplicationCommandOptionString,
			Name: "query",
		})

	appCmd := cmd.ToApplicationCommand()
	if appCmd.Name != "play" || appCmd.Description != "Play a song" {
		t.Errorf("application command = %+v, want name and description carried over", appCmd)
	}
	if len(appCmd.Options) != 1 {
		t.Errorf("Options = %v, want 1 option", appCmd.Options)
	}
}

func TestCommandCollection(t *testing.T) {
	cc := NewCommandCollection()

	if cc.Size() != 0 {
		t.Errorf("Size = %d, want 0", cc.Size())
	}

	cmd := NewCommand("ping", "Ping", "util", func(*Context) error { return nil })
	cc.Set("ping", cmd)

	got, ok := cc.Get("ping")
	if !ok || got != cmd {
		t.Errorf("Get(ping) = %v, %v, want the stored command", got, ok)
	}
	if _, ok := cc.Get("missing"); ok {
		t.Error("Get(missing) should fail")
	}
	if cc.Size() != 1 {
		t.Errorf("Size = %d, want 1", cc.Size())
	}

	all := cc.All()
	if len(all) != 1 || all["ping"] != cmd {
		t.Errorf("All = %v, want a one-entry copy", all)
	}

	// The copy is detached from the collection.
	delete(all, "ping")
	if cc.Size() != 1 {
		t.Error("mutating the All() copy must not affect the collection")
	}
}

func TestFindOptionRecursion(t *testing.T) {
	options := []*discordgo.ApplicationCommandInteractionDataOption{
		{
			Name: "group",
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "nested", Type: discordgo.ApplicationCommandOptionString, Value: "x"},
			},
		},
	}

	if got := findOption(options, "nested"); got == nil || got.Name != "nested" {
		t.Errorf("findOption(nested) = %v, want the nested option", got)
	}
	if got := findOption(options, "absent"); got != nil {
		t.Errorf("findOption(absent) = %v, want nil", got)
	}
}
