package extractor

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// A strategy inspects the parsed document and/or the raw markup and
// returns a media URL, or "" when it has nothing to offer. doc may be nil
// when the markup could not be parsed; strategies must tolerate that.
type strategy func(doc *goquery.Document, content string) string

// strategies are ordered by descending expected quality: the precise
// full-resolution sources first, broad best-effort scans last.
var strategies = []strategy{
	ogImageMeta,
	imageSrcLink,
	actualMediaElement,
	rankedAssetScan,
	detailsImageElement,
	broadestImageScan,
}

func ogImageMeta(doc *goquery.Document, _ string) string {
	if doc == nil {
		return ""
	}
	url, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return url
}

func imageSrcLink(doc *goquery.Document, _ string) string {
	if doc == nil {
		return ""
	}
	url, _ := doc.Find(`link[rel="image_src"]`).First().Attr("href")
	return url
}

// actualMediaElement reads the primary media element. A bare src gets the
// maximum-size parameters appended so the CDN serves the full rendition.
func actualMediaElement(doc *goquery.Document, _ string) string {
	if doc == nil {
		return ""
	}
	url, ok := doc.Find("img#ActualMedia").First().Attr("src")
	if !ok || url == "" {
		return ""
	}
	if !strings.Contains(url, "?") {
		url += "?" + sizeParams
	}
	return url
}

var (
	assetURLPattern = regexp.MustCompile(`src="(https://steamuserimages[^"]+\.jpg[^"]*)"`)
	resolutionToken = regexp.MustCompile(`(\d+)x(\d+)`)
	anyImagePattern = regexp.MustCompile(`(?i)<img[^>]+src="(https://[^"]+\.(?:jpg|png|jpeg))[^"]*"`)
	hiResSubstrings = []string{"/1920x1080/", "/2560x1440/", "/3840x2160/", "_original"}
)

// rankedAssetScan collects every CDN asset reference on the page. A URL
// carrying an explicit high-resolution marker is returned immediately;
// otherwise the candidates are ranked by the pixel area encoded in the URL.
func rankedAssetScan(_ *goquery.Document, content string) string {
	var urls []string
	for _, m := range assetURLPattern.FindAllStringSubmatch(content, -1) {
		url := m[1]
		if i := strings.Index(url, "?"); i >= 0 {
			url = url[:i]
		}
		for _, marker := range hiResSubstrings {
			if strings.Contains(url, marker) {
				return url
			}
		}
		urls = append(urls, url)
	}
	if len(urls) == 0 {
		return ""
	}
	sort.SliceStable(urls, func(i, j int) bool {
		return encodedArea(urls[i]) > encodedArea(urls[j])
	})
	return urls[0]
}

func encodedArea(url string) int {
	m := resolutionToken.FindStringSubmatch(url)
	if m == nil {
		return 0
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	return w * h
}

func detailsImageElement(doc *goquery.Document, _ string) string {
	if doc == nil {
		return ""
	}
	url, ok := doc.Find("img.screenshotDetailsImage").First().Attr("src")
	if !ok || url == "" {
		return ""
	}
	if i := strings.Index(url, "?"); i >= 0 {
		url = url[:i]
	}
	return url
}

// broadestImageScan is the last resort: any https image reference on the
// page, preferring the longest URL since size hints ride in parameters.
func broadestImageScan(_ *goquery.Document, content string) string {
	var urls []string
	for _, m := range anyImagePattern.FindAllStringSubmatch(content, -1) {
		urls = append(urls, m[1])
	}
	if len(urls) == 0 {
		return ""
	}
	sort.SliceStable(urls, func(i, j int) bool {
		return len(urls[i]) > len(urls[j])
	})
	return urls[0]
}
