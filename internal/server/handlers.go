package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toyz/injgraph/pkg/analysis"
	"github.com/toyz/injgraph/pkg/render"
)

// InjectablesResponse is returned by GET /injectables
type InjectablesResponse struct {
	Query       string                 `json:"query"`
	Injectables []*analysis.Injectable `json:"injectables"`
}

// ProvidersResponse is returned by GET /providers
type ProvidersResponse struct {
	Injectable *analysis.Injectable `json:"injectable"`
	Import     string               `json:"import"`
	Selector   string               `json:"selector"`
	Providers  analysis.Providers   `json:"providers"`
	Consumers  analysis.Providers   `json:"consumers"`
}

func (s *Server) analysis(c *gin.Context) (*analysis.Analysis, bool) {
	refresh := c.Query("refresh") == "true"
	a, err := s.cache.Get(c.Request.Context(), s.source, refresh, s.load)
	if err != nil {
		s.diagnostics.Error("Extraction of %s failed: %v", s.source, err)
		abort(c, ErrExtractionFailed(err))
		return nil, false
	}
	return a, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "source": s.source})
}

// handleAnalysis serves GET /analysis
func (s *Server) handleAnalysis(c *gin.Context) {
	a, ok := s.analysis(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a)
}

// handleInjectables serves GET /injectables?q=
func (s *Server) handleInjectables(c *gin.Context) {
	a, ok := s.analysis(c)
	if !ok {
		return
	}
	query := c.Query("q")
	found := a.FindInjectables(query)
	if found == nil {
		found = []*analysis.Injectable{}
	}
	c.JSON(http.StatusOK, InjectablesResponse{Query: query, Injectables: found})
}

// handleProviders serves GET /providers?name=&package=
func (s *Server) handleProviders(c *gin.Context) {
	name := c.Query("name")
	pkg := c.Query("package")
	if name == "" || pkg == "" {
		abort(c, ErrBadRequest("name and package are required"))
		return
	}

	a, ok := s.analysis(c)
	if !ok {
		return
	}
	inj, found := a.Lookup(name, pkg)
	if !found {
		abort(c, ErrNotFound("no injectable "+name+" in "+pkg))
		return
	}

	importLine, selector := inj.ImportSnippet()
	c.JSON(http.StatusOK, ProvidersResponse{
		Injectable: inj,
		Import:     importLine,
		Selector:   selector,
		Providers:  a.ProvidersOf(inj),
		Consumers:  a.ConsumersOf(inj),
	})
}

func renderOptions(c *gin.Context) render.Options {
	return render.Options{
		Modules: c.Query("modules") != "false",
		Types:   c.Query("types") == "true",
	}
}

// handleDOT serves GET /graph.dot
func (s *Server) handleDOT(c *gin.Context) {
	a, ok := s.analysis(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", []byte(render.ToDOT(a, renderOptions(c))))
}

// handleSVG serves GET /graph.svg
func (s *Server) handleSVG(c *gin.Context) {
	a, ok := s.analysis(c)
	if !ok {
		return
	}
	svg, err := render.RenderSVG(c.Request.Context(), render.ToDOT(a, renderOptions(c)))
	if err != nil {
		abort(c, NewHttpError(http.StatusInternalServerError, err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}
