package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"GoStem/internal/analysis"
	"GoStem/internal/engine"
	"GoStem/internal/search"
)

type searchResponse struct {
	Query   string      `json:"query"`
	Parsed  string      `json:"parsed"`
	Total   int         `json:"total"`
	TookMS  float64     `json:"took_ms"`
	Results []searchHit `json:"results"`
}

type searchHit struct {
	ID    uint32 `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// runSearch executes q against the loaded index.
func (s *Server) runSearch(ctx context.Context, q string, limit int) (search.Result, error) {
	var res search.Result
	err := s.mgr.Use(func(se *search.Searcher) error {
		var err error
		res, err = se.Search(ctx, q, limit)
		return err
	})
	return res, err
}

// parseLimit reads the limit parameter, clamped to [1, MaxLimit].
func (s *Server) parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return min(search.DefaultLimit, s.cfg.MaxLimit), true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeError(c, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return min(n, s.cfg.MaxLimit), true
}

func searchStatus(err error) int {
	switch {
	case search.IsQueryError(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrQueryTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) handleSearch(c *gin.Context) {
	q := c.Query("q")
	limit, ok := s.parseLimit(c)
	if !ok {
		return
	}
	res, err := s.runSearch(c.Request.Context(), q, limit)
	if err != nil {
		writeError(c, searchStatus(err), err.Error())
		return
	}

	resp := searchResponse{
		Query:   res.Query,
		Parsed:  res.Parsed,
		Total:   res.Total,
		TookMS:  float64(res.Took) / float64(time.Millisecond),
		Results: make([]searchHit, len(res.Hits)),
	}
	for i, h := range res.Hits {
		resp.Results[i] = searchHit{ID: h.ID, URL: h.URL, Title: h.Title}
	}
	c.JSON(http.StatusOK, resp)
}

type analyzeToken struct {
	Term     string `json:"term"`
	Position int    `json:"position"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	name := c.Query("analyzer")
	if name == "" {
		name = analysis.AnalyzerRussian
		_ = s.mgr.Use(func(se *search.Searcher) error {
			name = se.Stats().Analyzer
			return nil
		})
	}
	a, err := s.registry.Get(name)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	toks := a.Analyze("", c.Query("text"))
	out := make([]analyzeToken, len(toks))
	for i, t := range toks {
		out[i] = analyzeToken{Term: t.Term, Position: t.Position, Start: t.StartByte, End: t.EndByte}
	}
	c.JSON(http.StatusOK, gin.H{"analyzer": name, "tokens": out})
}

func (s *Server) handleIndexInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.mgr.Info())
}

func (s *Server) handleReload(c *gin.Context) {
	if err := s.mgr.Load(); err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "index": s.mgr.Info()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(c *gin.Context) {
	info := s.mgr.Info()
	if !info.Loaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": info.Error})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "docs": info.Stats.Docs})
}

type pageData struct {
	Query   string
	Total   int
	Took    string
	Results []searchHit
	Error   string
	Stats   Info
}

func (s *Server) handlePage(c *gin.Context) {
	data := pageData{Query: c.Query("q"), Stats: s.mgr.Info()}
	status := http.StatusOK
	if data.Query != "" {
		res, err := s.runSearch(c.Request.Context(), data.Query, s.cfg.MaxLimit)
		if err != nil {
			status = searchStatus(err)
			data.Error = err.Error()
		} else {
			data.Total = res.Total
			data.Took = res.Took.Round(time.Microsecond).String()
			for _, h := range res.Hits {
				data.Results = append(data.Results, searchHit{ID: h.ID, URL: h.URL, Title: h.Title})
			}
		}
	}
	c.HTML(status, "page", data)
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"message": message,
		},
	})
}

const pageTemplate = `<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>{{if .Query}}{{.Query}} · {{end}}GoStem</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
input[type=text] { width: 70%; padding: .4rem; }
.hit { margin: .8rem 0; }
.meta, .hint { color: #666; font-size: .85rem; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>GoStem</h1>
<form action="/" method="get">
<input type="text" name="q" value="{{.Query}}" autofocus>
<button type="submit">Найти</button>
</form>
<p class="hint">AND (&amp;&amp;), OR (||), NOT (!), скобки, префикс: слово*</p>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Query}}{{if not .Error}}
<p class="meta">Найдено: {{.Total}} ({{.Took}})</p>
{{range .Results}}
<div class="hit"><a href="{{.URL}}">{{.Title}}</a><div class="meta">#{{.ID}} {{.URL}}</div></div>
{{end}}
{{end}}{{end}}
<p class="meta">Документов: {{.Stats.Stats.Docs}}, терминов: {{.Stats.Stats.Terms}}</p>
</body>
</html>
`
