package protocol

import "sort"

// Scene catalogue shipped in WiZ firmware. IDs are stable across
// firmware versions; 1000 is the music-reactive rhythm mode.
var sceneNames = map[int]string{
	1:    "Ocean",
	2:    "Romance",
	3:    "Sunset",
	4:    "Party",
	5:    "Fireplace",
	6:    "Cozy",
	7:    "Forest",
	8:    "Pastel Colors",
	9:    "Wake up",
	10:   "Bedtime",
	11:   "Warm White",
	12:   "Daylight",
	13:   "Cool white",
	14:   "Night light",
	15:   "Focus",
	16:   "Relax",
	17:   "True colors",
	18:   "TV time",
	19:   "Plantgrowth",
	20:   "Spring",
	21:   "Summer",
	22:   "Fall",
	23:   "Deepdive",
	24:   "Jungle",
	25:   "Mojito",
	26:   "Club",
	27:   "Christmas",
	28:   "Halloween",
	29:   "Candlelight",
	30:   "Golden white",
	31:   "Pulse",
	32:   "Steampunk",
	1000: "Rhythm",
}

// Scene subsets supported by non-RGB hardware. Tunable-white bulbs run
// the white-spectrum scenes; dimmable-white bulbs a smaller set again.
var (
	tunableWhiteScenes  = []int{6, 9, 10, 11, 12, 13, 14, 15, 16, 18, 29, 30, 31, 32}
	dimmableWhiteScenes = []int{9, 10, 13, 14, 29, 30, 31, 32}
)

// SceneName returns the display name for a scene id.
func SceneName(id int) (string, bool) {
	name, ok := sceneNames[id]
	return name, ok
}

// AllSceneIDs returns every scene id in the catalogue, ascending.
func AllSceneIDs() []int {
	ids := make([]int, 0, len(sceneNames))
	for id := range sceneNames {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TunableWhiteSceneIDs returns the scene ids a tunable-white bulb supports.
func TunableWhiteSceneIDs() []int {
	ids := make([]int, len(tunableWhiteScenes))
	copy(ids, tunableWhiteScenes)
	return ids
}

// DimmableWhiteSceneIDs returns the scene ids a dimmable-white bulb supports.
func DimmableWhiteSceneIDs() []int {
	ids := make([]int, len(dimmableWhiteScenes))
	copy(ids, dimmableWhiteScenes)
	return ids
}
