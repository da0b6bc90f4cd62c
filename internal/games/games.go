// Package games holds the game keyword index shared by scoring and
// caption generation.
package games

import (
	"sort"
	"strings"
)

// tagIndex maps a lowercase game-name keyword to its hashtag set. The
// keys double as the popularity list used by the scorer.
var tagIndex = map[string][]string{
	"cyberpunk":     {"#cyberpunk2077", "#nightcity", "#cyberpunkgame", "#cdprojektred"},
	"witcher":       {"#thewitcher3", "#geralt", "#witcher", "#cdprojektred"},
	"gta":           {"#gtav", "#grandtheftauto", "#gtaonline", "#rockstargames"},
	"skyrim":        {"#skyrim", "#elderscrolls", "#dragonborn", "#bethesda"},
	"fallout":       {"#fallout4", "#fallout", "#wasteland", "#bethesda"},
	"destiny":       {"#destiny2", "#guardian", "#bungie"},
	"minecraft":     {"#minecraft", "#minecraftbuilds", "#pixelart", "#mojang"},
	"rdr2":          {"#reddeadredemption2", "#rdr2", "#rockstargames"},
	"valorant":      {"#valorant", "#riotgames", "#fps"},
	"csgo":          {"#csgo", "#counterstrike", "#valve"},
	"apex":          {"#apexlegends", "#ea", "#battleroyale"},
	"overwatch":     {"#overwatch", "#blizzard", "#fps"},
	"cod":           {"#callofduty", "#warzone", "#fps"},
	"fortnite":      {"#fortnite", "#battleroyale", "#epicgames"},
	"wow":           {"#worldofwarcraft", "#blizzard", "#mmorpg"},
	"lol":           {"#leagueoflegends", "#riot", "#moba"},
	"dota":          {"#dota2", "#valve", "#moba"},
	"assassin":      {"#assassinscreed", "#ubisoft", "#historical"},
	"horizon":       {"#horizonzerodawn", "#guerrillagames", "#playstation"},
	"god of war":    {"#godofwar", "#playstation", "#kratos"},
	"spider":        {"#spiderman", "#playstation", "#marvel"},
	"halo":          {"#halo", "#xbox", "#microsoft"},
	"gears":         {"#gearsofwar", "#xbox", "#microsoft"},
	"far cry":       {"#farcry", "#ubisoft", "#openworld"},
	"watch dogs":    {"#watchdogs", "#ubisoft", "#hacking"},
	"tomb raider":   {"#tombraider", "#laracroft", "#squareenix"},
	"final fantasy": {"#finalfantasy", "#squareenix", "#jrpg"},
	"dark souls":    {"#darksouls", "#fromsoftware", "#souls"},
	"elden ring":    {"#eldenring", "#fromsoftware", "#souls"},
	"sekiro":        {"#sekiro", "#fromsoftware", "#samurai"},
	"bloodborne":    {"#bloodborne", "#fromsoftware", "#gothic"},
}

// keywords is tagIndex's key set in sorted order; map iteration order
// would make a name containing two keywords match differently per run.
var keywords = func() []string {
	keys := make([]string, 0, len(tagIndex))
	for k := range tagIndex {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// DefaultTags apply when a game name matches no keyword.
var DefaultTags = []string{"#steam", "#gaming", "#pcgaming", "#screenshot"}

// IsPopular reports whether the game name contains a known keyword.
func IsPopular(game string) bool {
	_, ok := match(game)
	return ok
}

// Hashtags returns the tag set for the first keyword the game name
// contains, or DefaultTags when none match.
func Hashtags(game string) []string {
	if key, ok := match(game); ok {
		return tagIndex[key]
	}
	return DefaultTags
}

func match(game string) (string, bool) {
	lower := strings.ToLower(game)
	for _, key := range keywords {
		if strings.Contains(lower, key) {
			return key, true
		}
	}
	return "", false
}
