package ui

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"exodash/app"
	"exodash/domain/batch"
	"exodash/domain/core"
	apperrors "exodash/internal/errors"
	"exodash/internal/api"

	"github.com/gin-gonic/gin"
)

// PublishBatchEvents adapts job snapshots to hub events. Pass it as the registry
// observer.
func PublishBatchEvents(hub *api.SSEHub) func(app.BatchSnapshot) {
	return func(s app.BatchSnapshot) {
		hub.Broadcast(batchEvent(s))
	}
}

func batchEvent(s app.BatchSnapshot) api.BatchEvent {
	eventType := api.EventProgress
	switch {
	case s.State == batch.StateIdle:
		eventType = api.EventReset
	case s.State == batch.StateFailed:
		eventType = api.EventFailed
	case s.State.Terminal():
		eventType = api.EventDone
	}
	return api.BatchEvent{
		JobID:     s.ID.String(),
		EventType: eventType,
		State:     string(s.State),
		Progress:  s.Progress,
		Rows:      s.Rows,
		Error:     s.Error,
		Timestamp: s.UpdatedAt,
	}
}

func (s *Server) job(c *gin.Context) (*app.BatchJob, bool) {
	id, err := core.ParseJobID(c.Param("id"))
	if err != nil {
		writeError(c, apperrors.InvalidInput("malformed batch job id"))
		return nil, false
	}
	job, err := s.deps.Batches.Get(id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return job, true
}

// handleBatchUpload creates a job from the multipart "file" field and parses it. A
// parse failure still registers the job so its failed state can be inspected.
func (s *Server) handleBatchUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.deps.MaxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large", "code": apperrors.CodeInvalidInput})
			return
		}
		writeError(c, apperrors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	f, err := header.Open()
	if err != nil {
		writeError(c, apperrors.Wrap(err, "failed to open upload"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, apperrors.Wrap(err, "failed to read upload"))
		return
	}

	job, err := s.deps.Batches.Create()
	if err != nil {
		writeError(c, err)
		return
	}
	if err := job.LoadFile(data, header.Header.Get("Content-Type")); err != nil {
		_ = s.deps.Batches.Remove(job.ID())
		writeError(c, err)
		return
	}
	log.Printf("[Batch] Job %s received %s (%d bytes)", job.ID(), header.Filename, len(data))

	if err := job.Parse(); err != nil {
		var pe *core.CsvParseError
		if errors.As(err, &pe) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
				"code":  apperrors.CodeCsvParse,
				"row":   pe.Row,
				"job":   job.Snapshot(),
			})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job.Snapshot())
}

func (s *Server) handleBatchStatus(c *gin.Context) {
	job, ok := s.job(c)
	if !ok {
		return
	}
	body := gin.H{"job": job.Snapshot()}
	if summary, err := job.Summary(); err == nil {
		body["summary"] = summary
		if c.Query("results") == "true" {
			results, _ := job.Results()
			views := make([]gin.H, len(results))
			for i, r := range results {
				views[i] = gin.H{"row": r.Row, "verdict": newVerdictView(r.Verdict)}
			}
			body["results"] = views
		}
	}
	c.JSON(http.StatusOK, body)
}

// handleBatchSubmit starts classification and returns at once; progress arrives over
// the events stream. The request outlives the HTTP call.
func (s *Server) handleBatchSubmit(c *gin.Context) {
	job, ok := s.job(c)
	if !ok {
		return
	}
	if err := job.Start(context.Background()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job.Snapshot())
}

func (s *Server) handleBatchSummary(c *gin.Context) {
	job, ok := s.job(c)
	if !ok {
		return
	}
	summary, err := job.Summary()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"positive":             summary.Positive,
		"negative":             summary.Negative,
		"total":                summary.Total,
		"positive_rate":        summary.PositiveRate(),
		"mean_confidence":      summary.MeanConfidence,
		"median_confidence":    summary.MedianConfidence,
		"stddev_confidence":    summary.StdDevConfidence,
		"confidence_histogram": summary.Histogram,
	})
}

func (s *Server) handleBatchExportCSV(c *gin.Context) {
	job, ok := s.job(c)
	if !ok {
		return
	}
	body, err := job.ExportCSV()
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="exoplanet-results-`+job.ID().String()+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

func (s *Server) handleBatchExportXLSX(c *gin.Context) {
	job, ok := s.job(c)
	if !ok {
		return
	}
	body, err := job.ExportXLSX()
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="exoplanet-results-`+job.ID().String()+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
}

func (s *Server) handleBatchEvents(c *gin.Context) {
	job, ok := s.job(c)
	if !ok {
		return
	}
	s.deps.Hub.Stream(c, job.ID().String(), func() *api.BatchEvent {
		initial := batchEvent(job.Snapshot())
		// a stream opened before submission should wait, not end on the idle state
		if initial.EventType == api.EventReset {
			initial.EventType = api.EventProgress
		}
		return &initial
	})
}

func (s *Server) handleBatchDelete(c *gin.Context) {
	id, err := core.ParseJobID(c.Param("id"))
	if err != nil {
		writeError(c, apperrors.InvalidInput("malformed batch job id"))
		return
	}
	if err := s.deps.Batches.Remove(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
