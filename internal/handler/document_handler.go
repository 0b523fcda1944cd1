package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resumetailor/internal/domain"
	"resumetailor/internal/export"
	"resumetailor/internal/service"
)

// DocumentHandler handles section extraction and rewrite endpoints.
type DocumentHandler struct {
	tailorService service.TailorService
	maxFileSize   int64
}

// NewDocumentHandler creates a new DocumentHandler. maxFileSize <= 0
// disables the upload limit.
func NewDocumentHandler(tailorService service.TailorService, maxFileSize int64) *DocumentHandler {
	return &DocumentHandler{tailorService: tailorService, maxFileSize: maxFileSize}
}

// SectionsResponse is the extraction result with per-section counts.
type SectionsResponse struct {
	*domain.SectionedDocument
	Counts domain.SectionCounts `json:"counts"`
}

// readUpload reads the "file" form field and the optional "format" field.
// Returns false if the request is invalid (error response already written).
func (h *DocumentHandler) readUpload(c *gin.Context) (service.DocumentInput, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return service.DocumentInput{}, false
	}
	defer func() { _ = file.Close() }()

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		HandleError(c, domain.ErrFileTooLarge)
		return service.DocumentInput{}, false
	}

	var r io.Reader = file
	if h.maxFileSize > 0 {
		r = io.LimitReader(file, h.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		log.Printf("DocumentHandler.readUpload: reading %s: %v", header.Filename, err)
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", "file could not be read")
		return service.DocumentInput{}, false
	}
	if h.maxFileSize > 0 && int64(len(data)) > h.maxFileSize {
		HandleError(c, domain.ErrFileTooLarge)
		return service.DocumentInput{}, false
	}

	input := service.DocumentInput{Data: data, FileName: header.Filename}
	if f := strings.ToLower(strings.TrimSpace(c.PostForm("format"))); f != "" {
		format, ok := domain.ExtensionFormats[f]
		if !ok {
			HandleError(c, domain.ErrUnsupportedFormat)
			return service.DocumentInput{}, false
		}
		input.Format = format
	}
	return input, true
}

// readRewrites reads a RewriteSet from the "rewrites" JSON field or from a
// filled-in span report uploaded as "rewrites_file" (csv or xlsx).
func readRewrites(c *gin.Context) (domain.RewriteSet, bool) {
	if raw := c.PostForm("rewrites"); raw != "" {
		var rs domain.RewriteSet
		if err := json.Unmarshal([]byte(raw), &rs); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REWRITES", "rewrites must be a JSON object of section -> list of strings")
			return nil, false
		}
		return rs, true
	}

	file, header, err := c.Request.FormFile("rewrites_file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_REWRITES", "rewrites or rewrites_file field is required")
		return nil, false
	}
	defer func() { _ = file.Close() }()

	var rs domain.RewriteSet
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx":
		rs, err = export.ReadXLSX(file)
	case ".csv":
		rs, err = export.ReadCSV(file)
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_REWRITES", "rewrites_file must be a .csv or .xlsx span report")
		return nil, false
	}
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REWRITES", err.Error())
		return nil, false
	}
	return rs, true
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.AttachmentName(filename)))
}

// Sections handles POST /api/v1/sections
// @Summary Extract resume sections
// @Tags sections
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "DOCX or PDF resume"
// @Param format formData string false "docx or pdf; sniffed when omitted"
// @Router /sections [post]
func (h *DocumentHandler) Sections(c *gin.Context) {
	input, ok := h.readUpload(c)
	if !ok {
		return
	}

	doc, err := h.tailorService.Sections(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, SectionsResponse{SectionedDocument: doc, Counts: doc.Counts()})
}

// ExportSections handles POST /api/v1/sections/export?format=csv|xlsx
// @Summary Download the span report
// @Tags sections
// @Accept multipart/form-data
// @Produce text/csv
// @Param file formData file true "DOCX or PDF resume"
// @Param format query string false "csv (default) or xlsx"
// @Router /sections/export [post]
func (h *DocumentHandler) ExportSections(c *gin.Context) {
	kind := strings.ToLower(c.DefaultQuery("format", "csv"))
	if kind != "csv" && kind != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_EXPORT_FORMAT", "format must be csv or xlsx")
		return
	}

	input, ok := h.readUpload(c)
	if !ok {
		return
	}

	doc, err := h.tailorService.Sections(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	name := strings.TrimSuffix(filepath.Base(input.FileName), filepath.Ext(input.FileName))
	var buf bytes.Buffer
	var contentType string
	switch kind {
	case "xlsx":
		err = export.WriteXLSX(&buf, doc, nil)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		err = export.WriteCSV(&buf, doc, nil)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		HandleError(c, fmt.Errorf("writing %s report: %w", kind, err))
		return
	}

	attachment(c, export.BuildFilename(name, kind))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Rewrite handles POST /api/v1/rewrite
// @Summary Inject caller-supplied rewrites
// @Tags rewrite
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "DOCX or PDF resume"
// @Param rewrites formData string false "JSON object: {\"summary\": [...], \"experience\": [...]}"
// @Param rewrites_file formData file false "Filled-in span report (.csv or .xlsx)"
// @Router /rewrite [post]
func (h *DocumentHandler) Rewrite(c *gin.Context) {
	input, ok := h.readUpload(c)
	if !ok {
		return
	}
	rs, ok := readRewrites(c)
	if !ok {
		return
	}

	res, err := h.tailorService.Rewrite(c.Request.Context(), service.RewriteInput{DocumentInput: input, Rewrites: rs})
	if err != nil {
		HandleError(c, err)
		return
	}

	attachment(c, res.FileName)
	c.Header("X-Applied-Rewrites", strconv.Itoa(res.Applied))
	c.Data(http.StatusOK, res.ContentType, res.Data)
}

// Tailor handles POST /api/v1/tailor
// @Summary Generate and inject rewrites for a job description
// @Tags rewrite
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "DOCX or PDF resume"
// @Param target formData string true "Job description"
// @Param store formData bool false "Upload the result and return a download URL"
// @Router /tailor [post]
func (h *DocumentHandler) Tailor(c *gin.Context) {
	input, ok := h.readUpload(c)
	if !ok {
		return
	}

	store := false
	if raw := c.PostForm("store"); raw != "" {
		var err error
		if store, err = strconv.ParseBool(raw); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_STORE", "store must be true or false")
			return
		}
	}

	res, err := h.tailorService.Tailor(c.Request.Context(), service.TailorInput{
		DocumentInput: input,
		Target:        c.PostForm("target"),
		Store:         store,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	if store {
		RespondOK(c, res)
		return
	}

	attachment(c, res.FileName)
	c.Header("X-Applied-Rewrites", strconv.Itoa(res.Applied))
	c.Header("X-Missing-Skills", strings.Join(res.MissingSkills, ", "))
	if res.ModelUsed != "" {
		c.Header("X-Model-Used", res.ModelUsed)
	}
	c.Data(http.StatusOK, res.ContentType, res.Data)
}
