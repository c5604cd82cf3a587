package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers = 4
	maxImageSize   = 20 << 20
	maxErrorBody   = 100
)

// ErrInvalidURL marks references that cannot be turned into a URL.
var ErrInvalidURL = errors.New("invalid image url")

// Config configures a Resolver.
type Config struct {
	BaseURL string
	Token   string
	Dir     string
	Workers int
}

// Resolver downloads the images referenced from discussion notes.
type Resolver struct {
	client  *http.Client
	baseURL string
	host    string
	token   string
	workers int
	store   *store
}

// NewResolver creates a Resolver using client for downloads.
func NewResolver(client *http.Client, cfg Config) *Resolver {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var host string
	if u, err := url.Parse(cfg.BaseURL); err == nil {
		host = u.Host
	}

	return &Resolver{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		host:    host,
		token:   cfg.Token,
		workers: workers,
		store:   newStore(cfg.Dir),
	}
}

// Resolve downloads every unique image referenced from the user notes of
// discussions. Individual failures are reported, not returned; only
// cancellation aborts the pass.
func (r *Resolver) Resolve(ctx context.Context, discussions []*domain.Discussion, projectID int) (*domain.AttachmentReport, error) {
	refs := collectRefs(discussions)

	log.Debug().Int("references", len(refs)).Int("project_id", projectID).Msg("resolving attachments")

	paths := make([]string, len(refs))
	errs := make([]error, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, ref := range refs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			paths[i], errs[i] = r.resolve(gctx, Classify(ref, r.baseURL, projectID))

			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("attachment resolution stopped: %w", err)
	}

	report := &domain.AttachmentReport{Attachments: make(domain.AttachmentMap, len(refs))}
	for i, ref := range refs {
		if errs[i] != nil {
			failure := domain.AttachmentFailure{URL: ref, Err: errs[i]}
			report.Failures = append(report.Failures, failure)

			event := log.Warn()
			if failure.Soft() {
				event = log.Debug()
			}
			event.Err(errs[i]).Str("url", ref).Msg("attachment not downloaded")

			continue
		}

		report.Attachments[ref] = paths[i]
	}

	log.Debug().
		Int("downloaded", len(report.Attachments)).
		Int("failed", len(report.Failures)).
		Int("skipped", report.SoftFailures()).
		Msg("attachments resolved")

	return report, nil
}

func (r *Resolver) resolve(ctx context.Context, target Target) (string, error) {
	switch target.Kind {
	case KindRelativeUpload, KindAbsoluteUpload, KindOtherRelative, KindAbsolute:
		return r.download(ctx, target.URL)
	case KindInvalid:
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, target.Raw)
	default:
		return "", fmt.Errorf("unhandled reference kind %s", target.Kind)
	}
}

func (r *Resolver) download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	// The token only goes to the configured instance.
	if req.URL.Host == r.host && r.token != "" {
		req.Header.Set("PRIVATE-TOKEN", r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", transportError(err, rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return "", domain.NewStatusError(resp.StatusCode, rawURL, string(body))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s has content type %q", domain.ErrNotImage, rawURL, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return "", transportError(err, rawURL)
	}
	if len(data) > maxImageSize {
		return "", &domain.Error{Kind: domain.ErrParse, Resource: rawURL, Body: "image too large"}
	}
	if len(data) == 0 {
		return "", &domain.Error{Kind: domain.ErrParse, Resource: rawURL, Body: "empty image"}
	}

	return r.store.save(fileName(rawURL, data, contentType), data)
}

func collectRefs(discussions []*domain.Discussion) []string {
	seen := make(map[string]struct{})
	var refs []string

	for _, d := range discussions {
		for _, note := range d.UserNotes() {
			for _, ref := range ExtractURLs(note.Body) {
				if _, ok := seen[ref]; ok {
					continue
				}
				seen[ref] = struct{}{}
				refs = append(refs, ref)
			}
		}
	}

	return refs
}

func transportError(err error, resource string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.Error{Kind: domain.ErrTimeout, Resource: resource, Err: err}
	}

	return &domain.Error{Kind: domain.ErrNetwork, Resource: resource, Err: err}
}
