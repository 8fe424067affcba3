// Package relay publishes player state changes over MQTT so external
// dashboards can follow playback without polling the HTTP API.
package relay

import (
	"time"

	"github.com/SonataStudios/SonataLink/pkg/lavalink"
	"github.com/SonataStudios/SonataLink/pkg/logger"
	"github.com/SonataStudios/SonataLink/pkg/mqtt"
)

const topicPrefix = "sonata/music/"

type trackMessage struct {
	Event    string `json:"event"`
	GuildID  string `json:"guildId"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	URI      string `json:"uri,omitempty"`
	Length   int64  `json:"length,omitempty"`
	Position int64  `json:"position,omitempty"`
	At       int64  `json:"at"`
}

// Attach subscribes the relay to the manager's event stream. A nil
// communicator disables the relay.
func Attach(manager *lavalink.Manager, mc *mqtt.MqttCommunicator) {
	if mc == nil {
		return
	}

	forward := func(event string) lavalink.Handler {
		return func(e lavalink.Event) {
			if e.Player == nil {
				return
			}
			publish(mc, event, e)
		}
	}

	manager.On(lavalink.EventTrackStart, forward("trackStart"))
	manager.On(lavalink.EventTrackEnd, forward("trackEnd"))
	manager.On(lavalink.EventTrackError, forward("trackError"))
	manager.On(lavalink.EventQueueEnd, forward("queueEnd"))
	manager.On(lavalink.EventPlayerDestroy, forward("playerDestroy"))

	logger.System("MQTT relay attached", "Relay")
}

func publish(mc *mqtt.MqttCommunicator, event string, e lavalink.Event) {
	msg := trackMessage{
		Event:    event,
		GuildID:  e.Player.GuildID(),
		Position: e.Player.Position(),
		At:       time.Now().UnixMilli(),
	}
	if e.Track != nil {
		msg.Title = e.Track.Info.Title
		msg.Author = e.Track.Info.Author
		msg.URI = e.Track.Info.URI
		msg.Length = e.Track.Info.Length
	}

	topic := topicPrefix + msg.GuildID + "/" + event
	if err := mc.Publish(topic, msg); err != nil {
		logger.Debug("Error publishing "+topic+": "+err.Error(), "Relay")
	}
}
