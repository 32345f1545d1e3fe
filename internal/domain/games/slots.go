package games

// Slot columns on ga_games. Each holds the id of one consumed source record.
const (
	ColSteamAppID         = "steam_app_id"
	ColSecondSteamAppID   = "second_steam_app_id"
	ColGogGameID          = "gog_game_id"
	ColWikipediaGameID    = "wikipedia_game_id"
	ColPcgamingwikiGameID = "pcgamingwiki_game_id"
)

var slotColumns = map[string]struct{}{
	ColSteamAppID:         {},
	ColSecondSteamAppID:   {},
	ColGogGameID:          {},
	ColWikipediaGameID:    {},
	ColPcgamingwikiGameID: {},
}

// IsSlotColumn guards raw SQL built from a column name.
func IsSlotColumn(col string) bool {
	_, ok := slotColumns[col]
	return ok
}

// Slot returns the value held in col, or nil.
func (g *Game) Slot(col string) *uint64 {
	if g == nil {
		return nil
	}
	switch col {
	case ColSteamAppID:
		return g.SteamAppID
	case ColSecondSteamAppID:
		return g.SecondSteamAppID
	case ColGogGameID:
		return g.GogGameID
	case ColWikipediaGameID:
		return g.WikipediaGameID
	case ColPcgamingwikiGameID:
		return g.PcgamingwikiGameID
	default:
		return nil
	}
}

// SetSlot assigns col in memory; the caller persists it.
func (g *Game) SetSlot(col string, id uint64) {
	v := id
	switch col {
	case ColSteamAppID:
		g.SteamAppID = &v
	case ColSecondSteamAppID:
		g.SecondSteamAppID = &v
	case ColGogGameID:
		g.GogGameID = &v
	case ColWikipediaGameID:
		g.WikipediaGameID = &v
	case ColPcgamingwikiGameID:
		g.PcgamingwikiGameID = &v
	}
}
