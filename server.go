package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jfeuerstein/josh-space/internal/session"
	"github.com/jfeuerstein/josh-space/internal/tiles"
	"github.com/jfeuerstein/josh-space/internal/tracking"
)

// sessionHeader carries the page's session id on every HTMX request.
const sessionHeader = "X-Session-Id"

//go:embed templates/*.html
var templatesFS embed.FS

type server struct {
	machine  *tiles.Machine
	sessions *session.Store
	tracker  *tracking.Store // nil when tracking is off
	text     siteText
	log      *zap.Logger
	admin    adminAuth

	// retention bounds how long analytics rows are kept.
	retention time.Duration
	bg        sync.WaitGroup
}

func newServer(m *tiles.Machine, sessions *session.Store, tracker *tracking.Store, admin adminAuth, log *zap.Logger) *server {
	return &server{
		machine:  m,
		sessions: sessions,
		tracker:  tracker,
		text:     textFor(m.Mode()),
		log:      log,
		admin:    admin,

		retention: 365 * 24 * time.Hour,
	}
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	if s.tracker != nil {
		r.Use(s.visitorTrackingMiddleware())
	}

	// Home page route; every load starts a fresh session
	r.GET("/", s.index)

	// HTMX endpoints - each returns just the fragment it replaces
	r.POST("/tiles/:index/click", s.clickTile)
	r.POST("/password", s.submitPassword)
	r.POST("/password/cancel", s.cancelPassword)
	r.POST("/logo", s.clickLogo)

	r.GET("/api/projects", s.listProjects)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.tracker != nil {
		s.setupAdminRoutes(r)
	}
	return r
}

func (s *server) index(c *gin.Context) {
	st := s.machine.Initial()
	id := s.sessions.Create(st)

	c.Header(sessionHeader, id)
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "index.html", pageView{
		SessionID: id,
		Tagline:   s.text.Tagline,
		Footer:    s.text.Footer,
		Logo:      s.logo(false),
		Board:     s.board(st),
	})
}

func (s *server) clickTile(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 || index >= s.machine.Len() {
		c.Status(http.StatusNotFound)
		return
	}
	st, eff, ok := s.apply(c, tiles.ClickTile(index))
	if !ok {
		return
	}
	if eff.OpenURL != "" {
		s.openProject(c, index, eff.OpenURL)
	}
	c.HTML(http.StatusOK, "board", s.board(st))
}

func (s *server) submitPassword(c *gin.Context) {
	st, _, ok := s.apply(c, tiles.SubmitPassword(c.PostForm("password")))
	if !ok {
		return
	}
	if st.Popup.Error {
		s.log.Debug("incorrect password", zap.Int("tile", st.Popup.Target))
	}
	c.HTML(http.StatusOK, "board", s.board(st))
}

func (s *server) cancelPassword(c *gin.Context) {
	st, _, ok := s.apply(c, tiles.CancelPassword())
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "board", s.board(st))
}

func (s *server) clickLogo(c *gin.Context) {
	_, eff, ok := s.apply(c, tiles.ClickLogo())
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "logo", s.logo(eff.RevealBanner))
}

func (s *server) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"variant":  s.machine.Mode(),
		"projects": s.machine.Projects(),
	})
}

// apply runs ev against the caller's session. When the session is gone it
// asks HTMX to reload the page, which mints a new one, and reports false.
func (s *server) apply(c *gin.Context, ev tiles.Event) (tiles.State, tiles.Effect, bool) {
	var eff tiles.Effect
	st, err := s.sessions.Update(c.GetHeader(sessionHeader), func(st tiles.State) tiles.State {
		next, e := s.machine.Apply(st, ev)
		eff = e
		return next
	})
	if errors.Is(err, session.ErrNotFound) {
		c.Header("HX-Refresh", "true")
		c.Status(http.StatusNoContent)
		return tiles.State{}, tiles.Effect{}, false
	}
	if err != nil {
		s.log.Error("session update failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return tiles.State{}, tiles.Effect{}, false
	}

	if eff.SolvedIndex != tiles.NoTile {
		p := s.machine.Projects()[eff.SolvedIndex]
		s.log.Info("tile solved", zap.Int("tile", eff.SolvedIndex), zap.String("project", p.Label()))
		s.record(c, func(ctx context.Context, ip string) error {
			return s.tracker.RecordSolve(ctx, ip, eff.SolvedIndex, p.URL)
		})
	}
	return st, eff, true
}

// openProject tells the page to open url in a new tab. The inline script
// listening for open-project passes noopener,noreferrer to window.open.
func (s *server) openProject(c *gin.Context, index int, url string) {
	trigger, err := json.Marshal(map[string]any{
		"open-project": map[string]string{"url": url},
	})
	if err != nil {
		s.log.Error("encode HX-Trigger", zap.Error(err))
		return
	}
	c.Header("HX-Trigger", string(trigger))
	s.log.Info("project opened", zap.Int("tile", index), zap.String("url", url))
	s.record(c, func(ctx context.Context, ip string) error {
		return s.tracker.RecordOpen(ctx, ip, index, url)
	})
}

// record runs fn against the tracker unless tracking is off or the client
// sent Do Not Track.
func (s *server) record(c *gin.Context, fn func(ctx context.Context, ip string) error) {
	if s.tracker == nil || c.GetHeader("DNT") == "1" {
		return
	}
	if err := fn(c.Request.Context(), c.ClientIP()); err != nil {
		s.log.Warn("tracking failed", zap.Error(err))
	}
}

// wait blocks until background tracking writes have finished.
func (s *server) wait() {
	s.bg.Wait()
}
