package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SonataStudios/SonataLink/pkg/lavalink"
)

// SetupAPIRoutes sets up the API routes over the playback manager.
func SetupAPIRoutes(s *Server, manager *lavalink.Manager) {
	api := s.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/nodes", nodesHandler(manager))
		api.GET("/players", playersHandler(manager))
	}
}

// healthHandler returns a simple health check response.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "SonataLink is running",
	})
}

// nodesHandler lists every node link with its load statistics.
func nodesHandler(manager *lavalink.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		nodes := manager.Nodes()
		out := make([]gin.H, 0, len(nodes))
		for _, node := range nodes {
			out = append(out, gin.H{
				"name":      node.Identifier(),
				"connected": node.Connected(),
				"penalties": node.Penalties(),
				"cpuLoad":   node.CPULoad(),
				"stats":     node.Stats(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"nodes": out})
	}
}

// playersHandler lists every active playback session.
func playersHandler(manager *lavalink.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		players := manager.Players()
		out := make([]gin.H, 0, len(players))
		for _, player := range players {
			entry := gin.H{
				"guildId":   player.GuildID(),
				"node":      player.Node().Identifier(),
				"playing":   player.Playing(),
				"paused":    player.Paused(),
				"position":  player.Position(),
				"ping":      player.Ping(),
				"loop":      player.Loop(),
				"queueSize": player.QueueSize(),
			}
			if current := player.Current(); current != nil {
				entry["track"] = gin.H{
					"title":  current.Info.Title,
					"author": current.Info.Author,
					"uri":    current.Info.URI,
					"length": current.Info.Length,
				}
			}
			out = append(out, entry)
		}
		c.JSON(http.StatusOK, gin.H{"players": out})
	}
}
