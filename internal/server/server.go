// Package server exposes the session engine over HTTP. Handlers stay
// thin: they parse, dispatch to the component packages, and serialize.
package server

import (
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"madsag-engine/internal/catalog"
	"madsag-engine/internal/common/config"
	"madsag-engine/internal/common/logger"
	"madsag-engine/internal/session"
	"madsag-engine/internal/siteconfig"
)

// Server holds the HTTP surface and the shared site metadata.
type Server struct {
	cfg      config.Config
	sessions *session.Manager
	logger   logger.Logger

	mu   sync.RWMutex
	site siteMetadata
}

// siteMetadata is the head-of-page state served to the browser layer. It
// starts from the configured brand fallbacks and is overwritten by the
// CMS global config when that loads.
type siteMetadata struct {
	SiteName     string `json:"siteName"`
	Slogan       string `json:"slogan"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	FaviconURL   string `json:"faviconUrl,omitempty"`
	LogoURL      string `json:"logoUrl,omitempty"`
	FooterText   string `json:"footerText,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
}

func New(cfg config.Config, sessions *session.Manager, log logger.Logger) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		logger:   log.WithFields(map[string]interface{}{"component": "server"}),
		site: siteMetadata{
			SiteName: cfg.Brand.Name,
			Slogan:   cfg.Brand.Slogan,
			Title:    cfg.Brand.Name,
		},
	}
}

// SetTitle implements siteconfig.PageMetadata.
func (s *Server) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.site.Title = title
}

// SetDescription implements siteconfig.PageMetadata.
func (s *Server) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.site.Description = description
}

// SetFavicon implements siteconfig.PageMetadata.
func (s *Server) SetFavicon(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.site.FaviconURL = url
}

// ApplySiteConfig merges the loaded CMS global config into the served
// metadata.
func (s *Server) ApplySiteConfig(cfg *siteconfig.SiteConfig) {
	s.mu.Lock()
	if cfg.SiteName != "" {
		s.site.SiteName = cfg.SiteName
	}
	if cfg.Slogan != "" {
		s.site.Slogan = cfg.Slogan
	}
	if cfg.Logo.URL != "" {
		s.site.LogoURL = cfg.Logo.URL
	}
	if cfg.FooterText != "" {
		s.site.FooterText = cfg.FooterText
	}
	if cfg.Contact.Email != "" {
		s.site.ContactEmail = cfg.Contact.Email
	}
	if cfg.Contact.Phone != "" {
		s.site.ContactPhone = cfg.Contact.Phone
	}
	s.mu.Unlock()

	cfg.Apply(s)
}

var _ siteconfig.PageMetadata = (*Server)(nil)

// Router assembles the gin engine with CORS, health, metrics, and the
// versioned API.
func (s *Server) Router() *gin.Engine {
	if s.cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.Server.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.Server.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/site", s.handleSite)
		api.GET("/catalog", s.handleCatalog)

		api.POST("/sessions", s.handleCreateSession)
		sess := api.Group("/sessions/:id")
		{
			sess.GET("", s.handleSnapshot)
			sess.POST("/observations", s.handleObservations)
			sess.GET("/cta", s.handleCTA)
			sess.POST("/enquire", s.handleEnquire)

			modals := sess.Group("/modals")
			{
				modals.POST("/quote/open", s.handleOpenQuote)
				modals.POST("/quote/close", s.handleCloseQuote)
				modals.PUT("/quote/record", s.handleUpdateQuoteRecord)
				modals.POST("/quote/submit", s.handleSubmitQuote)
				modals.POST("/portfolio/open", s.handleOpenPortfolio)
				modals.POST("/portfolio/close", s.handleClosePortfolio)
				modals.POST("/blog/open", s.handleOpenBlog)
				modals.POST("/blog/close", s.handleCloseBlog)
				modals.POST("/service-detail/open", s.handleOpenServiceDetail)
				modals.POST("/service-detail/close", s.handleCloseServiceDetail)
				modals.POST("/service-detail/enquire", s.handleEnquireFromDetail)
			}
		}
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("request failed", map[string]interface{}{
				"method": c.Request.Method,
				"path":   c.FullPath(),
				"status": c.Writer.Status(),
			})
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}

func (s *Server) handleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services":  catalog.Services,
		"sections":  catalog.SectionIDs,
		"faqTopics": catalog.FAQTopics,
	})
}

func (s *Server) handleSite(c *gin.Context) {
	s.mu.RLock()
	site := s.site
	s.mu.RUnlock()
	c.JSON(http.StatusOK, site)
}
