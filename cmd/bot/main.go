// Package main is the entry point for the SonataLink bot.
// It initializes all systems and starts the Discord client.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SonataStudios/SonataLink/internal/commands"
	"github.com/SonataStudios/SonataLink/internal/events"
	"github.com/SonataStudios/SonataLink/internal/relay"
	"github.com/SonataStudios/SonataLink/pkg/config"
	"github.com/SonataStudios/SonataLink/pkg/database"
	"github.com/SonataStudios/SonataLink/pkg/discord"
	"github.com/SonataStudios/SonataLink/pkg/errors"
	"github.com/SonataStudios/SonataLink/pkg/lavalink"
	"github.com/SonataStudios/SonataLink/pkg/logger"
	"github.com/SonataStudios/SonataLink/pkg/mqtt"
	"github.com/SonataStudios/SonataLink/pkg/spotify"
	"github.com/SonataStudios/SonataLink/pkg/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Starting SonataLink...", "Main")

	var discordClient *discord.Client
	var manager *lavalink.Manager
	errors.Init(cfg.ErrorWebhook, func() {
		if manager != nil {
			manager.Shutdown()
		}
		if discordClient != nil {
			discordClient.Stop()
		}
	})

	// Database is optional, playlist commands degrade without it.
	if cfg.MongoDBURL != "" {
		db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
		if err != nil {
			logger.Warn(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		}
		if db != nil {
			defer db.Disconnect()
		}
	}

	var mqttClient *mqtt.MqttCommunicator
	if cfg.MQTTHost != "" {
		clientID := "sonatalink"
		if !cfg.IsProd() {
			clientID = "sonatalink_canary"
		}
		mqttClient = mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, clientID)
		defer mqttClient.Destroy()
	}

	var spotifyResolver *spotify.Resolver
	if cfg.SpotifyClientID != "" && cfg.SpotifySecret != "" {
		spotifyResolver, err = spotify.New(spotify.Options{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifySecret,
		})
		if err != nil {
			logger.Warn(fmt.Sprintf("Spotify disabled: %v", err), "Main")
		}
	}

	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	manager = lavalink.NewManager(lavalink.ManagerOptions{
		ClientName: "SonataLink",
		Nodes: []lavalink.NodeConfig{
			{
				Name:             cfg.LinkName,
				Host:             cfg.LinkHost,
				Port:             cfg.LinkPort,
				Password:         cfg.LinkPassword,
				Secure:           cfg.LinkSecure,
				ReconnectTries:   cfg.LinkReconnectTries,
				ReconnectTimeout: time.Duration(cfg.LinkReconnectTimeout) * time.Millisecond,
				ResumeKey:        cfg.LinkResumeKey,
				ResumeTimeout:    cfg.LinkResumeTimeout,
			},
		},
	})

	commands.RegisterAll(discordClient, manager, spotifyResolver)
	events.RegisterAll(discordClient, manager)
	relay.Attach(manager, mqttClient)

	webServer := web.Init()
	web.SetupAPIRoutes(webServer, manager)
	webServer.StartAsync(cfg.Port)

	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer discordClient.Stop()

	// The manager needs the gateway session for voice intents, so it starts
	// after the client.
	manager.Init(discordClient.Session)
	defer manager.Shutdown()

	logger.Success("SonataLink started!", "Main")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down SonataLink...", "Main")
}
