package organization

// Settings is the typed view of an organization's stored settings.
// Defaults live here and nowhere else; persistence merges stored values
// over DefaultSettings so absent keys resolve uniformly.
type Settings struct {
	// MaxFactionDepth caps how deep the faction tree may grow. A root
	// faction sits at depth 0, so the default of 2 allows three levels.
	MaxFactionDepth int `json:"max_faction_depth"`
	// MaxAttendeesPerFaction caps direct (non-recursive) attendee
	// membership per faction.
	MaxAttendeesPerFaction int `json:"max_attendees_per_faction"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxFactionDepth:        2,
		MaxAttendeesPerFaction: 50,
	}
}
