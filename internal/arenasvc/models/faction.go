package models

// Faction display names, indexed by faction id. The engine only knows ids;
// names exist for API payloads and the web client.
var FactionNames = map[uint32]string{
	0: "Ember",
	1: "Tide",
	2: "Gale",
}

func FactionName(id uint32) string {
	if name, ok := FactionNames[id]; ok {
		return name
	}
	return "unknown"
}
