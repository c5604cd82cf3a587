package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/denchenko/mrdigest/internal/core/app"
	"github.com/denchenko/mrdigest/internal/core/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const defaultProjectLimit = 50

// DiscussionView is one discussion as served to clients.
type DiscussionView struct {
	ID       string         `json:"id"`
	IsCode   bool           `json:"is_code"`
	FilePath string         `json:"file_path,omitempty"`
	Line     int            `json:"line,omitempty"`
	Notes    []*domain.Note `json:"notes"`
}

// FailureView is an attachment that could not be downloaded.
type FailureView struct {
	URL   string `json:"url"`
	Error string `json:"error"`
	Soft  bool   `json:"soft"`
}

// DiscussionsResponse is the payload of the discussions endpoint.
type DiscussionsResponse struct {
	Project      *domain.Project      `json:"project"`
	MergeRequest *domain.MergeRequest `json:"merge_request"`
	Counts       domain.CommentCounts `json:"counts"`
	Discussions  []DiscussionView     `json:"discussions"`
	Attachments  domain.AttachmentMap `json:"attachments"`
	Failures     []FailureView        `json:"failures"`
}

// BestPracticesRequest selects the discussions to analyze. Empty means all.
type BestPracticesRequest struct {
	DiscussionIDs []string `json:"discussion_ids"`
}

// BestPracticesResponse carries the LLM answer.
type BestPracticesResponse struct {
	Practices string `json:"practices"`
}

func (s *Server) handleCurrentUser(c echo.Context) error {
	user, err := s.app.GetCurrentUser(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleListProjects(c echo.Context) error {
	limit := defaultProjectLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	var terms []string
	if raw := c.QueryParam("match"); raw != "" {
		terms = strings.Split(raw, ",")
	}

	projects, err := s.app.ListProjects(c.Request().Context(), domain.ProjectQuery{
		Search: c.QueryParam("search"),
		Match:  domain.MatchAnySubstring(terms...),
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleListMergeRequests(c echo.Context) error {
	projectPath, err := projectParam(c)
	if err != nil {
		return err
	}

	mrs, err := s.app.ListMergeRequests(c.Request().Context(), projectPath, c.QueryParam("state"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, mrs)
}

func (s *Server) handleDiscussions(c echo.Context) error {
	projectPath, iid, err := mergeRequestParams(c)
	if err != nil {
		return err
	}

	var opts []app.LoadOption
	if c.QueryParam("attachments") == "false" {
		opts = append(opts, app.SkipAttachments())
	}

	session := s.session(projectPath, iid)
	if err := session.Load(c.Request().Context(), iid, opts...); err != nil {
		return err
	}

	resp, err := discussionsResponse(c.Request().Context(), session)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDiscussion(c echo.Context) error {
	projectPath, iid, err := mergeRequestParams(c)
	if err != nil {
		return err
	}

	session, err := s.loadedSession(c.Request().Context(), projectPath, iid)
	if err != nil {
		return err
	}

	discussion, err := session.Discussion(c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, discussionView(discussion))
}

func (s *Server) handleFileWindow(c echo.Context) error {
	projectPath, iid, err := mergeRequestParams(c)
	if err != nil {
		return err
	}

	contextLines := domain.DefaultContextLines
	if raw := c.QueryParam("lines"); raw != "" {
		contextLines, err = strconv.Atoi(raw)
		if err != nil || contextLines < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid lines")
		}
	}

	session, err := s.loadedSession(c.Request().Context(), projectPath, iid)
	if err != nil {
		return err
	}

	window, err := session.FileWindow(c.Request().Context(), c.Param("id"), contextLines)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, window)
}

func (s *Server) handleNotes(c echo.Context) error {
	projectPath, iid, err := mergeRequestParams(c)
	if err != nil {
		return err
	}

	notes, err := s.app.ListNotes(c.Request().Context(), projectPath, iid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notes)
}

func (s *Server) handleStateEvents(c echo.Context) error {
	projectPath, iid, err := mergeRequestParams(c)
	if err != nil {
		return err
	}

	events, err := s.app.ListStateEvents(c.Request().Context(), projectPath, iid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, events)
}

func (s *Server) handleBestPractices(c echo.Context) error {
	projectPath, iid, err := mergeRequestParams(c)
	if err != nil {
		return err
	}

	var req BestPracticesRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
	}

	session, err := s.loadedSession(c.Request().Context(), projectPath, iid)
	if err != nil {
		return err
	}

	practices, err := session.ExtractBestPractices(c.Request().Context(), req.DiscussionIDs...)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, BestPracticesResponse{Practices: practices})
}

// loadedSession returns the merge request session, loading it without
// attachments if nothing was loaded yet.
func (s *Server) loadedSession(ctx context.Context, projectPath string, iid int) (*app.Session, error) {
	session := s.session(projectPath, iid)
	if session.MergeRequest() != nil {
		return session, nil
	}

	if err := session.Load(ctx, iid, app.SkipAttachments()); err != nil {
		return nil, err
	}

	return session, nil
}

func discussionView(d *domain.Discussion) DiscussionView {
	c := d.Classify()

	return DiscussionView{
		ID:       d.ID,
		IsCode:   c.IsCode,
		FilePath: c.FilePath,
		Line:     c.Line,
		Notes:    d.UserNotes(),
	}
}

func discussionsResponse(ctx context.Context, session *app.Session) (DiscussionsResponse, error) {
	project, err := session.Project(ctx)
	if err != nil {
		return DiscussionsResponse{}, err
	}

	discussions := session.UserDiscussions()
	views := make([]DiscussionView, 0, len(discussions))
	for _, d := range discussions {
		views = append(views, discussionView(d))
	}

	resp := DiscussionsResponse{
		Project:      project,
		MergeRequest: session.MergeRequest(),
		Counts:       session.Counts(),
		Discussions:  views,
		Attachments:  domain.AttachmentMap{},
		Failures:     []FailureView{},
	}

	if report := session.Attachments(); report != nil {
		if report.Attachments != nil {
			resp.Attachments = report.Attachments
		}
		for _, f := range report.Failures {
			resp.Failures = append(resp.Failures, FailureView{URL: f.URL, Error: f.Err.Error(), Soft: f.Soft()})
		}
	}

	return resp, nil
}

// projectParam accepts the project as an escaped path ("group%2Fproject")
// or a numeric id.
func projectParam(c echo.Context) (string, error) {
	projectPath, err := url.PathUnescape(c.Param("project"))
	if err != nil || projectPath == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid project")
	}

	return projectPath, nil
}

func mergeRequestParams(c echo.Context) (string, int, error) {
	projectPath, err := projectParam(c)
	if err != nil {
		return "", 0, err
	}

	iid, err := strconv.Atoi(c.Param("iid"))
	if err != nil || iid < 1 {
		return "", 0, echo.NewHTTPError(http.StatusBadRequest, "invalid merge request iid")
	}

	return projectPath, iid, nil
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoComments):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrQuota):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrAPI), errors.Is(err, domain.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
			}
			he = echo.NewHTTPError(status, err.Error())
		}

		e.DefaultHTTPErrorHandler(he, c)
	}
}
