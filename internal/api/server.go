package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/auth"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/config"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/db"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/export"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/geocode"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/models"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/onboard"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/pipeline"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Session     *onboard.Manager
	Formatter   *export.Formatter
	Echo        *echo.Echo
}

func NewServer(jqs, live *pgxpool.Pool, cfg *config.Config) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:3000"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	store := db.NewStore(jqs, live)
	client := geocode.NewClient(cfg.Geocoder)
	resolver := geocode.NewResolver(client, cfg.Geocoder.CountryHint, cfg.Resolver.FallbackTown, cfg.Geocoder.CacheMaxEntries)
	inserter := pipeline.NewInserter(store)

	s := &Server{
		Store:       store,
		AuthService: auth.NewService(jqs),
		Session:     onboard.NewManager(resolver, inserter, onboard.DefaultBase),
		Formatter:   export.NewFormatter(cfg.Export, cfg.Resolver.FallbackTown),
		Echo:        e,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/logout", s.handleLogout)

	protected := api.Group("")
	protected.Use(auth.Middleware)
	protected.GET("/auth/check", s.handleAuthCheck)

	protected.GET("/companies/search", s.handleSearch)
	protected.POST("/companies/insert", s.handleInsert)
	protected.POST("/companies/export/text", s.handleExportText)
	protected.POST("/companies/export/excel", s.handleExportExcel)

	protected.GET("/selection", s.handleGetSelection)
	protected.POST("/selection", s.handleAddToSelection)
	protected.PATCH("/selection/:id", s.handleUpdateSelection)
	protected.DELETE("/selection/:id", s.handleRemoveFromSelection)
	protected.DELETE("/selection", s.handleClearSelection)
	protected.PUT("/selection/base", s.handleSetBase)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Auth

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	c.SetCookie(sessionCookie(resp.Token, time.Now().Add(auth.TokenTTL)))
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLogout(c echo.Context) error {
	// Expire the cookie immediately
	c.SetCookie(sessionCookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleAuthCheck(c echo.Context) error {
	login, err := auth.GetLoginFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	user, err := s.AuthService.GetUser(c.Request().Context(), login)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"authenticated": true, "user": user})
}

func sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Registry search

func (s *Server) handleSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query param required"})
	}

	companies, err := s.Store.SearchCompanies(c.Request().Context(), query)
	if err != nil {
		c.Logger().Errorf("Company search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if companies == nil {
		companies = []models.CompanyCandidate{}
	}

	return c.JSON(http.StatusOK, companies)
}

// Selection

func (s *Server) handleGetSelection(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"base":      s.Session.Base(),
		"companies": s.Session.Companies(),
	})
}

func (s *Server) handleAddToSelection(c echo.Context) error {
	var cand models.CompanyCandidate
	if err := c.Bind(&cand); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(cand.CompanyID) == "" || strings.TrimSpace(cand.Name) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "suppuserid and SUP_NAME are required"})
	}

	enriched, err := s.Session.Add(c.Request().Context(), cand)
	if err != nil {
		if errors.Is(err, onboard.ErrAlreadySelected) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, enriched)
}

func (s *Server) handleUpdateSelection(c echo.Context) error {
	id := c.Param("id")

	var upd onboard.Update
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	updated, err := s.Session.ApplyUpdate(c.Request().Context(), id, upd)
	if err != nil {
		if errors.Is(err, onboard.ErrNotSelected) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleRemoveFromSelection(c echo.Context) error {
	if err := s.Session.Remove(c.Param("id")); err != nil {
		if errors.Is(err, onboard.ErrNotSelected) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleClearSelection(c echo.Context) error {
	s.Session.Clear()
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleSetBase(c echo.Context) error {
	var req struct {
		Base string `json:"base"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	companies, err := s.Session.SetBase(req.Base)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"base":      s.Session.Base(),
		"companies": companies,
	})
}

// Insert

func (s *Server) handleInsert(c echo.Context) error {
	result, err := s.Session.Insert(c.Request().Context())
	if err != nil {
		switch {
		case errors.Is(err, onboard.ErrInsertInProgress):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, onboard.ErrEmptySelection):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Message})
		}
		c.Logger().Errorf("Batch insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	if conflict := pipeline.ConflictPayload(result); conflict != nil {
		return c.JSON(http.StatusConflict, conflict)
	}
	if result.Success {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":  true,
			"inserted": len(result.Inserted),
		})
	}

	// Write errors without duplicates: report per-record outcomes
	return c.JSON(http.StatusOK, result)
}

// Export

func (s *Server) handleExportText(c echo.Context) error {
	companies, base, err := s.exportSelection(c)
	if err != nil {
		return err
	}

	filename := exportFilename("txt")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set(echo.HeaderContentType, "text/tab-separated-values; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)

	return s.Formatter.WriteText(c.Response(), companies, base)
}

func (s *Server) handleExportExcel(c echo.Context) error {
	companies, base, err := s.exportSelection(c)
	if err != nil {
		return err
	}

	filename := exportFilename("xlsx")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	return s.Formatter.WriteExcel(c.Response(), companies, base)
}

// exportSelection accepts an explicit body of companies plus base, falling
// back to the live selection when the body is empty.
func (s *Server) exportSelection(c echo.Context) ([]models.EnrichedCompany, string, error) {
	var req struct {
		Base      string                   `json:"base"`
		Companies []models.EnrichedCompany `json:"companies"`
	}
	if err := c.Bind(&req); err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	companies := req.Companies
	base := req.Base
	if len(companies) == 0 {
		companies = s.Session.Companies()
	}
	if base == "" {
		base = s.Session.Base()
	}
	if len(companies) == 0 {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "nothing to export")
	}

	return companies, base, nil
}

func exportFilename(ext string) string {
	return fmt.Sprintf("suppliers_%s.%s", time.Now().Format("20060102_150405"), ext)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
