package crawler

import "regexp"

const communityBase = "https://steamcommunity.com"

// hrefPatterns capture complete (possibly relative) detail-page links.
var hrefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`href="((?:https://steamcommunity\.com)?/sharedfiles/filedetails/\?id=\d+)"`),
	regexp.MustCompile(`href='((?:https://steamcommunity\.com)?/sharedfiles/filedetails/\?id=\d+)'`),
	regexp.MustCompile(`"SharedFileDetailsPage"[^>]+href="([^"]+)"`),
}

// idPatterns capture bare item identifiers that require URL synthesis.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`SharedFileBindMouseHover\(\s*"(\d+)"`),
	regexp.MustCompile(`src="https://steamuserimages[^"]+/([0-9a-f]+)/"`),
	regexp.MustCompile(`href="[^"]+/file/(\d+)"`),
	regexp.MustCompile(`data-screenshot-id="(\d+)"`),
	regexp.MustCompile(`onclick="ViewScreenshot\('(\d+)'\)"`),
	regexp.MustCompile(`ShowModalContent\( 'shared_file_(\d+)'`),
}

// countPatterns locate the source's own total-item count; first match wins.
var countPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+) screenshots`),
	regexp.MustCompile(`(?i)(\d+) Screenshot`),
	regexp.MustCompile(`(?i)Screenshots \((\d+)\)`),
	regexp.MustCompile(`(?i)Showing (\d+) screenshots`),
}

var thumbnailRowPattern = regexp.MustCompile(`<div class="imageWallRow">`)

// normalizeDetailURL converts a matched href into its absolute canonical form.
func normalizeDetailURL(href string) string {
	if len(href) > 0 && href[0] == '/' {
		return communityBase + href
	}
	return href
}

// synthesizeDetailURL builds a canonical detail-page URL from a bare id.
func synthesizeDetailURL(id string) string {
	return communityBase + "/sharedfiles/filedetails/?id=" + id
}
