package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ainews/app/database"
	"ainews/app/source"
)

func NewHandler(itemRepo database.ItemStore, db *database.DB, newsDir string, version string) *Handler {
	return &Handler{
		itemRepo: itemRepo,
		db:       db,
		newsDir:  newsDir,
		version:  version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.db.Ping(); err != nil {
		slog.Error("Database ping failed", "error", err)
		health["database"] = "unreachable"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	health["database"] = "ok"

	if counts, err := h.itemRepo.CountBySource(); err == nil {
		total := 0
		for _, n := range counts {
			total += n
		}
		health["items"] = total
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	counts, err := h.itemRepo.CountBySource()
	if err != nil {
		slog.Error("Database error", "operation", "count_by_source", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := make(map[string]int, len(counts))
	total := 0
	for kind, n := range counts {
		stats[string(kind)] = n
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": stats,
		"total":   total,
	})
}

func (h *Handler) ListDigests(c *gin.Context) {
	entries, err := os.ReadDir(h.newsDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"digests": []string{}, "total": 0})
			return
		}
		slog.Error("Failed to read digest directory", "dir", h.newsDir, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list digests"})
		return
	}

	digests := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		digests = append(digests, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(digests)))

	c.JSON(http.StatusOK, gin.H{
		"digests": digests,
		"total":   len(digests),
	})
}

func (h *Handler) GetDigest(c *gin.Context) {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".md") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid digest name"})
		return
	}

	path := filepath.Join(h.newsDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Digest not found"})
			return
		}
		slog.Error("Failed to read digest", "digest", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read digest"})
		return
	}

	c.Header("Content-Type", "text/markdown; charset=utf-8")
	c.String(http.StatusOK, string(data))
}

func (h *Handler) APIListItems(c *gin.Context) {
	kind := source.Kind(c.Query("source"))
	valid := false
	for _, k := range source.AllKinds() {
		if k == kind {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown source", "message": "Use one of: reddit, youtube, techcrunch, medium"})
		return
	}

	days := 1
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
			return
		}
		days = parsed
	}

	window := source.NewWindow(time.Now(), days)
	items, err := h.itemRepo.QueryRange(kind, window.Start, window.End)
	if err != nil {
		slog.Error("Database error", "operation", "query_range", "source", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	results := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		results = append(results, map[string]interface{}{
			"id":           item.NaturalID,
			"title":        item.Title,
			"author":       item.Author,
			"url":          item.URL,
			"published_at": item.PublishedAt.UTC().Format(time.RFC3339),
			"fetched_at":   item.FetchedAt.UTC().Format(time.RFC3339),
			"extra":        item.Extra,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"source": kind,
		"items":  results,
		"total":  len(results),
	})
}
