package caption

import (
	"strings"
	"time"

	"github.com/steamgram/steamgram/internal/games"
)

type dailyTheme struct {
	Name string
	Tags []string
}

var dailyThemes = map[time.Weekday]dailyTheme{
	time.Sunday:    {"Sunday Showcase", []string{"#sundayshowcase", "#bestshots", "#weekendvibes"}},
	time.Monday:    {"Modded Monday", []string{"#moddedmonday", "#gamemod", "#community"}},
	time.Tuesday:   {"Texture Tuesday", []string{"#texturetuesday", "#graphics", "#visualfeast"}},
	time.Wednesday: {"Wildlife Wednesday", []string{"#wildlifewednesday", "#naturegaming", "#exploration"}},
	time.Thursday:  {"Throwback Thursday", []string{"#throwbackthursday", "#retrogaming", "#nostalgia"}},
	time.Friday:    {"Featured Friday", []string{"#featuredfriday", "#community", "#highlight"}},
	time.Saturday:  {"Screenshot Saturday", []string{"#screenshotsaturday", "#photomode", "#art"}},
}

func themeFor(t time.Time) dailyTheme {
	return dailyThemes[t.Weekday()]
}

var baseTemplates = []string{
	"🎮 {theme} featuring this stunning {game} moment! The detail is incredible ✨",
	"When {game} delivers visuals like this... pure art! 🎨 What's your favorite screenshot?",
	"📸 Caught this perfect {game} scene! The atmosphere is absolutely captivating 🌟",
	"This {game} screenshot speaks volumes about modern gaming graphics 🔥",
	"✨ {theme} brings you this breathtaking {game} vista! The composition is *chef's kiss*",
	"🌅 Sometimes you just have to stop and appreciate the artistry in {game}",
	"The lighting in this {game} shot is absolutely phenomenal! 💫 Screenshot goals!",
	"🎯 {theme} highlight: When {game} creates moments this beautiful, you screenshot it!",
	"This {game} scene perfectly captures why I love gaming photography 📷✨",
}

var atmosphericTemplates = []string{
	"The mood in this {game} screenshot hits different... 🌙 Pure atmosphere!",
	"This {game} environment tells a story without saying a word 📖✨",
	"Getting lost in the ambiance of {game} - screenshot says it all 🌊",
	"The vibe in this {game} shot is absolutely immaculate 🎭",
	"When {game} creates atmospheres this rich, you know you're experiencing art 🎨",
}

var actionTemplates = []string{
	"⚡ Epic {game} moment captured at just the right second! The timing is everything!",
	"🔥 This {game} action shot got my heart racing! Anyone else love intense moments like this?",
	"💥 Peak {game} excitement right here! These are the moments we game for!",
	"🎯 Perfect {game} screenshot timing! This is why I always have capture ready!",
	"⭐ {theme} action highlight: {game} delivering the adrenaline rush!",
}

var technicalTemplates = []string{
	"🖥️ The technical mastery in this {game} shot is mind-blowing! Graphics have come so far",
	"💻 {game}'s visual fidelity on full display - screenshot perfection achieved!",
	"🔧 The rendering quality in this {game} scene is absolutely next-level!",
	"📈 This {game} screenshot showcases why PC gaming visuals are unmatched!",
	"⚙️ When {game} flexes its graphical muscle like this... screenshot worthy!",
}

// templatePool widens with the configured variety level.
func templatePool(variety string) []string {
	pool := append([]string(nil), baseTemplates...)
	switch variety {
	case "high", "":
		pool = append(pool, atmosphericTemplates...)
		pool = append(pool, actionTemplates...)
		pool = append(pool, technicalTemplates...)
	case "medium":
		pool = append(pool, atmosphericTemplates...)
	}
	return pool
}

// templateBody picks a random template, steering away from patterns the
// history says are overused, and fills in the placeholders.
func (g *Generator) templateBody(subj Subject, theme dailyTheme) string {
	pool := templatePool(g.cfg.Variety)
	selected := pool[g.rng.Intn(len(pool))]

	if g.history.Count(Pattern(selected)) > 2 {
		var fresh []string
		for _, t := range pool {
			if g.history.Count(Pattern(t)) < 2 {
				fresh = append(fresh, t)
			}
		}
		if len(fresh) > 0 {
			selected = fresh[g.rng.Intn(len(fresh))]
		}
	}

	body := fillTemplate(selected, subj, theme)
	g.history.Bump(Pattern(body))
	return body
}

func fillTemplate(template string, subj Subject, theme dailyTheme) string {
	game := subj.Game
	if game == "" {
		game = "this game"
	}
	r := strings.NewReplacer(
		"{game}", game,
		"{theme}", theme.Name,
		"{title}", subj.Title,
	)
	return r.Replace(template)
}

// staticBody is the bottom of the cascade and never fails.
func staticBody(subj Subject, theme dailyTheme) string {
	var sb strings.Builder
	sb.WriteString("🎮 " + theme.Name + "! ")
	if subj.Game != "" {
		sb.WriteString("Amazing screenshot from " + subj.Game)
	} else {
		sb.WriteString("Stunning gaming moment captured")
	}
	if subj.Title != "" {
		sb.WriteString("\n\n\"" + subj.Title + "\"")
	}
	sb.WriteString("\n\n📸 Captured by Steam Community")
	sb.WriteString("\n🎯 Follow for daily gaming screenshots")
	return sb.String()
}

var baseTags = []string{"#steam", "#gaming", "#pcgaming", "#screenshot", "#gamer"}

var tierTags = map[string][]string{
	"ultra":     {"#4k", "#ultrahd", "#maxsettings"},
	"very_high": {"#highres", "#crisp"},
	"high":      {"#hd", "#quality"},
}

var varietyTags = []string{
	"#steamcommunity", "#pcmasterrace", "#videogames", "#gamedev",
	"#indiegaming", "#gameart", "#photomode", "#gamephotography",
	"#visualart", "#digitalart", "#gamescreen", "#epicshot",
	"#gamingmoments", "#virtualphotography", "#gameaesthetics",
}

// Hashtags assembles the tag block: base, game-specific, daily theme,
// tier, then shuffled variety tags until the cap.
func (g *Generator) Hashtags(subj Subject) []string {
	seen := make(map[string]struct{})
	var tags []string
	add := func(tag string) {
		if _, ok := seen[tag]; ok || len(tags) >= g.cfg.MaxHashtags {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, t := range baseTags {
		add(t)
	}
	for _, t := range games.Hashtags(subj.Game) {
		add(t)
	}
	for _, t := range themeFor(g.now()).Tags {
		add(t)
	}
	for _, t := range tierTags[subj.Tier] {
		add(t)
	}

	shuffled := append([]string(nil), varietyTags...)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for _, t := range shuffled {
		if len(tags) >= g.cfg.MaxHashtags {
			break
		}
		add(t)
	}
	return tags
}
