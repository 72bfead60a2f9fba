// Package api exposes the archive analytics over HTTP. Every request
// recomputes its view live from the shard files; nothing is cached
// between calls.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/scoredlab/archivist/archive"
	"github.com/scoredlab/archivist/network"
	"github.com/scoredlab/archivist/stats"
)

const defaultSearchLimit = 100

// Server serves the analytics API for one archive.
type Server struct {
	archive *archive.Archive
	log     *logrus.Logger
	echo    *echo.Echo
}

// NewServer wires up routes and middleware.
func NewServer(a *archive.Archive, log *logrus.Logger, maxRequestsPerMinute int) *Server {
	s := &Server{archive: a, log: log, echo: echo.New()}
	s.echo.HideBanner = true

	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())

	requestsPerSecond := float64(maxRequestsPerMinute) / 60.0
	rateLimit := rate.Limit(requestsPerSecond * 0.95) // use 95% of the rate limit to be safe

	rateLimiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rateLimit,
				Burst:     1,
				ExpiresIn: 3 * time.Minute,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded, please try again later",
			})
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded, please try again later",
			})
		},
	}
	s.echo.Use(middleware.RateLimiterWithConfig(rateLimiterConfig))

	s.echo.GET("/api/stats/users", s.handleUserStats)
	s.echo.GET("/api/stats/users/:name", s.handleUserStatsOne)
	s.echo.GET("/api/stats/communities", s.handleCommunityStats)
	s.echo.GET("/api/stats/communities/:name", s.handleCommunityStatsOne)
	s.echo.GET("/api/network", s.handleNetwork)
	s.echo.GET("/api/search", s.handleSearch)
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start runs the server until ctx is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context, port int) {
	go func() {
		serverAddr := fmt.Sprintf(":%d", port)
		s.log.WithField("port", port).Info("Starting API server")
		if err := s.echo.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Fatal("API server failed")
		}
	}()

	<-ctx.Done()
	s.log.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.log.WithError(err).Error("API server shutdown failed")
	}
}

// source applies the optional start/end query window to the archive.
func (s *Server) source(c echo.Context) (archive.Source, error) {
	startStr, endStr := c.QueryParam("start"), c.QueryParam("end")
	if startStr == "" && endStr == "" {
		return s.archive, nil
	}

	start, err := parseMillis(startStr, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}
	end, err := parseMillis(endStr, int64(1)<<62)
	if err != nil {
		return nil, fmt.Errorf("invalid end: %w", err)
	}
	return s.archive.TimeSlice(start, end), nil
}

func parseMillis(s string, fallback int64) (int64, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func (s *Server) handleUserStats(c echo.Context) error {
	src, err := s.source(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats.Users(src))
}

func (s *Server) handleUserStatsOne(c echo.Context) error {
	src, err := s.source(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	name := c.Param("name")
	all := stats.Users(src)
	userStats, exists := all[name]
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("No statistics available for user %s", name),
		})
	}
	return c.JSON(http.StatusOK, userStats)
}

func (s *Server) handleCommunityStats(c echo.Context) error {
	src, err := s.source(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats.Communities(src))
}

func (s *Server) handleCommunityStatsOne(c echo.Context) error {
	src, err := s.source(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	name := c.Param("name")
	all := stats.Communities(src)
	communityStats, exists := all[name]
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("No statistics available for community %s", name),
		})
	}
	return c.JSON(http.StatusOK, communityStats)
}

// networkEdge is the wire shape of one interaction edge.
type networkEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

type networkResponse struct {
	Nodes int           `json:"nodes"`
	Edges []networkEdge `json:"edges"`
}

func (s *Server) handleNetwork(c echo.Context) error {
	opts := network.Options{MinInteractions: 1}

	if minStr := c.QueryParam("min"); minStr != "" {
		min, err := strconv.Atoi(minStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid min"})
		}
		opts.MinInteractions = min
	}

	startStr, endStr := c.QueryParam("start"), c.QueryParam("end")
	if startStr != "" || endStr != "" {
		start, err := parseMillis(startStr, 0)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start"})
		}
		end, err := parseMillis(endStr, int64(1)<<62)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid end"})
		}
		opts.TimeRange = &network.TimeRange{Start: start, End: end}
	}

	if usersStr := c.QueryParam("users"); usersStr != "" {
		opts.Users = make(map[string]struct{})
		for _, u := range strings.Split(usersStr, ",") {
			if u = strings.TrimSpace(u); u != "" {
				opts.Users[u] = struct{}{}
			}
		}
	}

	g := network.Build(s.archive, opts)

	edges := make([]networkEdge, 0, g.NumEdges())
	for _, e := range g.Edges() {
		edges = append(edges, networkEdge{Source: e.From, Target: e.To, Weight: e.Weight})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	return c.JSON(http.StatusOK, networkResponse{Nodes: g.NumNodes(), Edges: edges})
}

type searchResult struct {
	User string `json:"user"`
	Kind string `json:"kind"`
	Item any    `json:"item"`
}

func (s *Server) handleSearch(c echo.Context) error {
	pattern := c.QueryParam("q")
	if pattern == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q parameter is required"})
	}
	caseSensitive := c.QueryParam("case") == "true"

	limit := defaultSearchLimit
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = n
	}

	src, err := s.source(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	hits, err := archive.SearchText(src, pattern, caseSensitive)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	results := make([]searchResult, 0, limit)
	for hit := range hits {
		var item any
		if hit.Post != nil {
			item = hit.Post
		} else {
			item = hit.Comment
		}
		results = append(results, searchResult{User: hit.User, Kind: hit.Kind, Item: item})
		if len(results) >= limit {
			break
		}
	}

	return c.JSON(http.StatusOK, results)
}
