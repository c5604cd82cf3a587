package attachment

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Kind tells how an image reference found in a note body maps onto a URL.
type Kind int

const (
	// KindInvalid references cannot be downloaded.
	KindInvalid Kind = iota
	// KindRelativeUpload is a legacy /uploads/<hash>/<file> path rewritten
	// into the project upload endpoint.
	KindRelativeUpload
	// KindAbsoluteUpload is already in the project upload form.
	KindAbsoluteUpload
	// KindOtherRelative is any other host-relative path.
	KindOtherRelative
	// KindAbsolute is a full http(s) URL outside the upload endpoint.
	KindAbsolute
)

func (k Kind) String() string {
	switch k {
	case KindRelativeUpload:
		return "relative-upload"
	case KindAbsoluteUpload:
		return "absolute-upload"
	case KindOtherRelative:
		return "other-relative"
	case KindAbsolute:
		return "absolute"
	default:
		return "invalid"
	}
}

// Target is the classified form of one image reference.
type Target struct {
	Kind Kind
	// Raw is the reference as written in the note.
	Raw string
	// URL is the absolute URL to download. Empty for KindInvalid.
	URL string
}

const (
	uploadsPrefix        = "/uploads/"
	projectUploadSegment = "/-/project/"
)

var (
	markdownImage = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	htmlImage     = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*>`)
)

// Classify resolves a raw image reference against the instance base URL.
// projectID is the numeric project id, or 0 when unknown.
func Classify(raw, baseURL string, projectID int) Target {
	raw = strings.TrimSpace(raw)
	base := strings.TrimRight(baseURL, "/")

	switch {
	case raw == "":
		return Target{Kind: KindInvalid, Raw: raw}

	case strings.HasPrefix(raw, uploadsPrefix) && projectID > 0:
		return Target{
			Kind: KindRelativeUpload,
			Raw:  raw,
			URL:  fmt.Sprintf("%s/-/project/%d/uploads/%s", base, projectID, strings.TrimPrefix(raw, uploadsPrefix)),
		}

	case strings.HasPrefix(raw, projectUploadSegment), strings.HasPrefix(raw, uploadsPrefix):
		return Target{Kind: KindAbsoluteUpload, Raw: raw, URL: base + raw}

	case strings.HasPrefix(raw, "//"):
		scheme := "https"
		if u, err := url.Parse(base); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}

		return classifyAbsolute(raw, scheme+":"+raw)

	case strings.HasPrefix(raw, "/"):
		return Target{Kind: KindOtherRelative, Raw: raw, URL: base + raw}

	default:
		return classifyAbsolute(raw, raw)
	}
}

func classifyAbsolute(raw, candidate string) Target {
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Target{Kind: KindInvalid, Raw: raw}
	}

	if strings.Contains(u.Path, projectUploadSegment) {
		return Target{Kind: KindAbsoluteUpload, Raw: raw, URL: candidate}
	}

	return Target{Kind: KindAbsolute, Raw: raw, URL: candidate}
}

// ExtractURLs returns the image references in body, in order of appearance,
// without duplicates. Markdown images and HTML img tags are both recognized.
func ExtractURLs(body string) []string {
	type match struct {
		pos int
		url string
	}

	var matches []match
	for _, m := range markdownImage.FindAllStringSubmatchIndex(body, -1) {
		matches = append(matches, match{pos: m[0], url: body[m[4]:m[5]]})
	}
	for _, m := range htmlImage.FindAllStringSubmatchIndex(body, -1) {
		matches = append(matches, match{pos: m[0], url: body[m[2]:m[3]]})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].pos < matches[j].pos
	})

	seen := make(map[string]struct{}, len(matches))
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		u := strings.TrimSpace(m.url)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	return urls
}
