package ui

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"goeda/app"
	"goeda/domain/dataset"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/annotations"
	ingest "goeda/internal/dataset"
	"goeda/internal/errors"
	"goeda/internal/profiling"
	"goeda/internal/report"
)

// AnalysisHandler serves the analysis endpoints. Every request uploads the data
// file as multipart field "file" and may add a type declaration file as
// "annotations" (yaml, toml or json).
type AnalysisHandler struct {
	engine  *analysis.Engine
	reports *app.ReportService
	loader  *ingest.Loader
	logger  *internal.Logger
}

func NewAnalysisHandler(engine *analysis.Engine, reports *app.ReportService, loader *ingest.Loader, logger *internal.Logger) *AnalysisHandler {
	return &AnalysisHandler{engine: engine, reports: reports, loader: loader, logger: logger}
}

// analysisRequest is a parsed upload with its resolved column types
type analysisRequest struct {
	frame    *ingest.Frame
	declared dataset.TypeMap
	types    dataset.TypeMap
}

func (h *AnalysisHandler) HandleInfer() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := h.parse(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"source":      req.frame.Source,
			"fingerprint": req.frame.Data.Fingerprint().String(),
			"columns":     req.frame.Data.Names(),
			"types":       profiling.InferColumnTypes(req.frame),
		})
	}
}

func (h *AnalysisHandler) HandleDescribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := h.parse(c)
		if !ok {
			return
		}
		summary, err := profiling.Describe(req.frame)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	}
}

func (h *AnalysisHandler) HandleGroups() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := h.parse(c)
		if !ok {
			return
		}
		results, err := h.engine.CompareGroups(req.frame.Data, req.types)
		if err != nil {
			h.fail(c, errors.Wrap(err, "group comparison failed"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"results": results,
			"lines":   lines(len(results), func(i int) string { return report.GroupLine(results[i]) }),
		})
	}
}

func (h *AnalysisHandler) HandleCorrelations() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := h.parse(c)
		if !ok {
			return
		}
		columns := formColumns(c)
		if len(columns) == 0 {
			columns = analysis.CorrelatableColumns(req.frame.Data, req.types)
		}
		res, err := h.engine.ComputeCorrelations(req.frame.Data, columns, req.types.OrdinalOrders())
		if err != nil {
			h.fail(c, errors.Wrap(err, "correlation failed"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"result": res,
			"lines":  lines(len(res.StrongPairs), func(i int) string { return report.CorrelationLine(res.StrongPairs[i]) }),
		})
	}
}

func (h *AnalysisHandler) HandleIndependence() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := h.parse(c)
		if !ok {
			return
		}
		columns := formColumns(c)
		if len(columns) == 0 {
			columns = req.types.ColumnsOfType(req.frame.Data, dataset.TypeCategorical)
		}
		results, err := h.engine.TestCategoricalIndependence(req.frame.Data, columns)
		if err != nil {
			h.fail(c, errors.Wrap(err, "independence test failed"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"results": results,
			"lines":   lines(len(results), func(i int) string { return report.IndependenceLine(results[i]) }),
		})
	}
}

func (h *AnalysisHandler) HandleReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := h.parse(c)
		if !ok {
			return
		}
		rep, err := h.reports.Build(c.Request.Context(), req.frame, req.declared)
		if err != nil {
			h.fail(c, err)
			return
		}

		switch strings.ToLower(c.DefaultQuery("format", "json")) {
		case "markdown", "md":
			md, err := report.Markdown(rep)
			if err != nil {
				h.fail(c, err)
				return
			}
			c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		case "html":
			page, err := report.HTML(rep)
			if err != nil {
				h.fail(c, err)
				return
			}
			c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		default:
			c.JSON(http.StatusOK, rep)
		}
	}
}

// parse loads the upload and resolves its types, answering the request itself on
// failure
func (h *AnalysisHandler) parse(c *gin.Context) (*analysisRequest, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.fail(c, errors.InvalidInput("multipart field \"file\" is required"))
		return nil, false
	}
	frame, err := h.loadUpload(fh)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}

	var declared dataset.TypeMap
	if afh, err := c.FormFile("annotations"); err == nil {
		declared, err = h.loadAnnotations(afh)
		if err != nil {
			h.fail(c, err)
			return nil, false
		}
	}

	types, err := h.reports.ResolveTypes(frame, declared)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return &analysisRequest{frame: frame, declared: declared, types: types}, true
}

func (h *AnalysisHandler) loadUpload(fh *multipart.FileHeader) (*ingest.Frame, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open upload")
	}
	defer f.Close()
	return h.loader.LoadReader(f, fh.Filename)
}

func (h *AnalysisHandler) loadAnnotations(fh *multipart.FileHeader) (dataset.TypeMap, error) {
	format, err := annotations.FormatFromPath(fh.Filename)
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open annotations")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read annotations")
	}
	return annotations.Parse(data, format)
}

func (h *AnalysisHandler) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

// formColumns accepts repeated "columns" fields or one comma-separated list
func formColumns(c *gin.Context) []string {
	var out []string
	for _, v := range c.PostFormArray("columns") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func lines(n int, line func(int) string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = line(i)
	}
	return out
}
