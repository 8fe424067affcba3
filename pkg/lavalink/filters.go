package lavalink

// Filters holds the filter parameters applied to one player. The node does
// the actual processing; this client only forwards the values.
type Filters struct {
	player *Player

	// Volume is a gain multiplier between 0 and 5 (1.0 is unity).
	Volume float64
}

func newFilters(player *Player) *Filters {
	return &Filters{player: player, Volume: 1.0}
}

// Update pushes the current filter settings to the node.
func (f *Filters) Update() {
	f.player.node.Send(filtersPayload{
		Op:      "filters",
		GuildID: f.player.guildID,
		Volume:  f.Volume,
	})
}
