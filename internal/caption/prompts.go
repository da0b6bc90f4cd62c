package caption

import (
	"fmt"
	"strings"
	"time"
)

func textPrompt(subj Subject, theme dailyTheme, now time.Time) string {
	game := subj.Game
	if game == "" {
		game = "Unknown Game"
	}
	title := subj.Title
	if title == "" {
		title = "No specific title"
	}
	return fmt.Sprintf(`Create an engaging Instagram caption for a gaming screenshot with these details:

Game: %s
Screenshot Title: %s
Image Quality: %s
Daily Theme: %s (%s)
Theme Context: %s

Requirements:
- Write 2-4 engaging sentences
- Make it exciting and shareable
- Include relevant gaming terminology
- Match the daily theme (%s)
- Add appropriate emojis
- End with a call-to-action
- Keep it under 150 characters for the main text
- DON'T include hashtags (they'll be added separately)
- Sound natural and enthusiastic

Generate an engaging caption now:`,
		game, title, subj.Tier, theme.Name, now.Weekday(), strings.Join(theme.Tags, " "), theme.Name)
}

func visionPrompt(subj Subject, theme dailyTheme, overused []string) string {
	game := subj.Game
	if game == "" {
		game = "an unknown game"
	}
	avoid := ""
	if len(overused) > 0 {
		avoid = "\n\nAVOID these overused patterns: " + strings.Join(overused, ", ")
	}
	return fmt.Sprintf(`Look at this gaming screenshot from %s and write an engaging Instagram caption about what you actually see in the image.

Daily Theme: %s
Theme Context: %s

Requirements:
- Describe something specific and striking in the image
- 2-3 sentences, under 200 characters
- Add appropriate emojis
- DON'T include hashtags (they'll be added separately)
- Sound natural and enthusiastic%s

Create a caption that captures what makes THIS specific image special:`,
		game, theme.Name, strings.Join(theme.Tags, " "), avoid)
}
