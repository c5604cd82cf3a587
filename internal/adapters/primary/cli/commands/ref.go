package commands

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var mrURLPattern = regexp.MustCompile(`^https?://([^/]+)/(.+?)/-/merge_requests/(\d+)`)

// mrRef points at one merge request of one project.
type mrRef struct {
	Host        string
	ProjectPath string
	IID         int
}

func (r mrRef) String() string {
	return r.ProjectPath + "!" + strconv.Itoa(r.IID)
}

// parseMRURL extracts the host, project path and iid of a merge request
// web URL. Any host is accepted.
func parseMRURL(mrURL string) (mrRef, error) {
	m := mrURLPattern.FindStringSubmatch(strings.TrimSpace(mrURL))
	if m == nil {
		return mrRef{}, fmt.Errorf("invalid merge request URL format: %s", mrURL)
	}

	iid, err := strconv.Atoi(m[3])
	if err != nil || iid < 1 {
		return mrRef{}, fmt.Errorf("invalid merge request ID: %s", m[3])
	}

	return mrRef{Host: m[1], ProjectPath: m[2], IID: iid}, nil
}

// parseMRRef accepts a merge request web URL or the short "group/project!iid" form.
func parseMRRef(baseURL, ref string) (mrRef, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		r, err := parseMRURL(ref)
		if err != nil {
			return mrRef{}, err
		}

		if u, err := url.Parse(baseURL); err == nil && u.Host != "" && u.Host != r.Host {
			log.Warn().
				Str("host", r.Host).
				Str("configured", u.Host).
				Msg("merge request host differs from the configured instance")
		}

		return r, nil
	}

	projectPath, rawIID, ok := strings.Cut(ref, "!")
	if !ok || projectPath == "" {
		return mrRef{}, fmt.Errorf("invalid merge request reference %q: expected URL or group/project!iid", ref)
	}

	iid, err := strconv.Atoi(rawIID)
	if err != nil || iid < 1 {
		return mrRef{}, fmt.Errorf("invalid merge request ID: %s", rawIID)
	}

	return mrRef{ProjectPath: projectPath, IID: iid}, nil
}
