package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/victorydiv/fojournapp-sub002/internal/merge"
	"github.com/victorydiv/fojournapp-sub002/internal/profile"
	"github.com/victorydiv/fojournapp-sub002/pkg/database"
	"github.com/victorydiv/fojournapp-sub002/pkg/logger"
	"github.com/victorydiv/fojournapp-sub002/prometheus"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var classifier profile.RequesterClassifier = profile.NewUserAgentClassifier()

// InitProfileHandler swaps the requester classification strategy
func InitProfileHandler(rc profile.RequesterClassifier) {
	classifier = rc
}

// pageData feeds the preview and forward templates
type pageData struct {
	Title       string
	Description string
	Image       string
	Canonical   string
	Res         *profile.Resolution
}

// PublicProfile resolves a public path segment and returns the
// machine-consumable resolution
func PublicProfile(c echo.Context) error {
	log := logger.FromContext(c)
	key := c.Param("key")

	res, err := profile.Resolve(database.GetDB(), key)
	if errors.Is(err, merge.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}
	if err != nil {
		log.Error("Profile resolution failed", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve profile"})
	}

	prometheus.RecordProfileResolution(res.Type, "api")
	return c.JSON(http.StatusOK, res)
}

// ProfilePage serves the public HTML surface at /u/:key. Automated agents
// receive pre-rendered static markup with preview metadata; human visitors
// receive markup that forwards to the interactive application. Crawlers are
// never asked to execute a client-side redirect: slug redirects for merged
// usernames are plain HTTP redirects.
func ProfilePage(c echo.Context) error {
	log := logger.FromContext(c)
	key := c.Param("key")
	isAgent := classifier.IsAutomatedAgent(c.Request())

	requester := "human"
	if isAgent {
		requester = "agent"
	}

	res, err := profile.Resolve(database.GetDB(), key)
	if errors.Is(err, merge.ErrNotFound) {
		prometheus.RecordProfileResolution("not_found", requester)
		return renderPage(c, http.StatusNotFound, "notfound.html", &pageData{})
	}
	if err != nil {
		log.Error("Profile resolution failed", zap.String("key", key), zap.Error(err))
		return c.HTML(http.StatusInternalServerError, "<!DOCTYPE html><title>Error</title><p>Something went wrong.</p>")
	}

	prometheus.RecordProfileResolution(res.Type, requester)

	if res.Type == profile.TypeRedirectToMerge {
		return c.Redirect(http.StatusMovedPermanently, "/u/"+res.MergeSlug)
	}

	data := buildPageData(res, key)
	if isAgent {
		return renderPage(c, http.StatusOK, "preview.html", data)
	}
	return renderPage(c, http.StatusOK, "forward.html", data)
}

func buildPageData(res *profile.Resolution, key string) *pageData {
	data := &pageData{Res: res}

	switch res.Type {
	case profile.TypeMerged:
		m := res.Merged
		data.Title = m.DisplayName
		data.Description = fmt.Sprintf("Traveling together since %s. %d public entries.",
			m.MergedAt, m.Stats.PublicEntries)
		if m.Bio != "" {
			data.Description = m.Bio
		}
		data.Image = m.HeroImageURL
		if data.Image == "" {
			data.Image = m.AvatarURL
		}
		data.Canonical = appBaseURL + "/u/" + m.Slug
	case profile.TypeUnmergedChoice:
		data.Title = "Choose a traveler"
		data.Description = "This shared journal has been unlinked. Pick one of the original travelers to continue."
		data.Canonical = appBaseURL + "/u/" + key
	case profile.TypeIndividual:
		p := res.Individual
		data.Title = p.DisplayName
		data.Description = fmt.Sprintf("%d public entries.", p.Stats.PublicEntries)
		if p.Bio != "" {
			data.Description = p.Bio
		}
		data.Image = p.HeroImageURL
		if data.Image == "" {
			data.Image = p.AvatarURL
		}
		data.Canonical = appBaseURL + "/u/" + p.Username
	}

	return data
}

func renderPage(c echo.Context, status int, name string, data *pageData) error {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.FromContext(c).Error("Template rendering failed", zap.String("template", name), zap.Error(err))
		return c.HTML(http.StatusInternalServerError, "<!DOCTYPE html><title>Error</title><p>Something went wrong.</p>")
	}
	return c.HTMLBlob(status, buf.Bytes())
}
