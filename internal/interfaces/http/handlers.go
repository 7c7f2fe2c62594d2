package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/colops/console/internal/digest"
	domdigest "github.com/colops/console/internal/domain/digest"
	"github.com/colops/console/internal/domain/reconcile"
	"github.com/colops/console/internal/engine"
	"github.com/colops/console/internal/gateway"
	"github.com/colops/console/internal/reminders"
	"github.com/colops/console/pkg/errors"
)

type handlers struct {
	engine    *engine.Engine
	reminders *reminders.Service
	digest    *digest.Service
}

func (h *handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status())
}

func (h *handlers) pending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pending": h.engine.Pending()})
}

func (h *handlers) confirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.engine.Confirm(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": h.engine.Pending()})
}

func (h *handlers) cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.engine.Cancel(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": h.engine.Pending()})
}

func (h *handlers) processImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		renderError(c, errors.InvalidParam("expected a multipart form"))
		return
	}

	var files []gateway.UploadFile
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			renderError(c, errors.InvalidParam("unreadable file in upload"))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			renderError(c, errors.InvalidParam("unreadable file in upload"))
			return
		}
		files = append(files, gateway.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	rec, err := h.engine.ProcessUpload(c.Request.Context(), files)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) setMode(c *gin.Context) {
	var body struct {
		Auto *bool `json:"auto" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		renderError(c, errors.InvalidParam("body must carry an auto flag"))
		return
	}

	mode := engine.ModeManual
	if *body.Auto {
		mode = engine.ModeAuto
	}
	h.engine.SetMode(c.Request.Context(), mode)
	c.JSON(http.StatusOK, gin.H{"mode": h.engine.Mode()})
}

func (h *handlers) paymentsLog(c *gin.Context) {
	filter := reconcile.HistoryFilter{
		Client:    c.Query("client"),
		MatchType: normalizeFilter(c.Query("match_type")),
		Source:    normalizeFilter(c.Query("source")),
	}
	c.JSON(http.StatusOK, gin.H{"entries": h.engine.History(filter)})
}

func (h *handlers) uploadHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"uploads": h.engine.UploadHistory()})
}

func (h *handlers) unpaidInvoices(c *gin.Context) {
	ov, err := h.reminders.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *handlers) toggleReminder(c *gin.Context) {
	row, ok := pathRow(c)
	if !ok {
		return
	}
	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		renderError(c, errors.InvalidParam("body must carry an active flag"))
		return
	}

	ov, err := h.reminders.Toggle(c.Request.Context(), row, *body.Active)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *handlers) pauseReminder(c *gin.Context) {
	row, ok := pathRow(c)
	if !ok {
		return
	}
	var body struct {
		Paused *bool `json:"paused" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		renderError(c, errors.InvalidParam("body must carry a paused flag"))
		return
	}

	ov, err := h.reminders.Pause(c.Request.Context(), row, *body.Paused)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *handlers) sendReminder(c *gin.Context) {
	row, ok := pathRow(c)
	if !ok {
		return
	}
	ov, err := h.reminders.Send(c.Request.Context(), row)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *handlers) digestSchedule(c *gin.Context) {
	sched, err := h.digest.Schedule(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

func (h *handlers) updateDigestSchedule(c *gin.Context) {
	var body domdigest.Schedule
	if err := c.ShouldBindJSON(&body); err != nil {
		renderError(c, errors.InvalidParam("body must carry a digest schedule"))
		return
	}

	sched, err := h.digest.UpdateSchedule(c.Request.Context(), body)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

func (h *handlers) digestPreview(c *gin.Context) {
	preview, err := h.digest.Preview(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *handlers) sendDigest(c *gin.Context) {
	preview, err := h.digest.SendNow(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		renderError(c, errors.InvalidParam("operation id must be an integer"))
		return 0, false
	}
	return id, true
}

func pathRow(c *gin.Context) (int, bool) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		renderError(c, errors.InvalidParam("invoice row must be an integer"))
		return 0, false
	}
	return row, true
}

// normalizeFilter maps the UI's "all" sentinel to an empty filter value.
func normalizeFilter(v string) string {
	if v == "all" {
		return ""
	}
	return v
}

// renderError maps an AppError to its HTTP status and a stable JSON shape.
func renderError(c *gin.Context, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Internal("unexpected error").WithCause(err)
	}
	c.AbortWithStatusJSON(appErr.Code.HTTPStatus(), gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"detail":  appErr.Detail,
	})
}
