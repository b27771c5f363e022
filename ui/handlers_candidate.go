package ui

import (
	"net/http"
	"strings"

	"exodash/app"
	"exodash/domain/candidate"
	apperrors "exodash/internal/errors"

	"github.com/gin-gonic/gin"
)

type candidateView struct {
	app.FormSnapshot
	DetailsHTML  string            `json:"details_html,omitempty"`
	Presentation *app.Presentation `json:"presentation,omitempty"`
}

func (s *Server) candidateView() candidateView {
	view := candidateView{FormSnapshot: s.deps.Form.Snapshot()}
	if view.Verdict != nil {
		view.DetailsHTML = renderMarkdown(view.Verdict.Explanation)
		if p, err := s.deps.Form.Presentation(); err == nil {
			view.Presentation = &p
		}
	}
	return view
}

func (s *Server) handleCandidate(c *gin.Context) {
	c.JSON(http.StatusOK, s.candidateView())
}

func (s *Server) handleCandidateMission(c *gin.Context) {
	var req struct {
		Mission string `json:"mission"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("body must be {\"mission\": \"...\"}"))
		return
	}
	if err := s.deps.Form.SelectMission(strings.TrimSpace(req.Mission)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.candidateView())
}

// handleCandidateField sets one feature; an empty value clears it.
func (s *Server) handleCandidateField(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		writeError(c, apperrors.InvalidInput("body must be {\"name\": \"...\", \"value\": \"...\"}"))
		return
	}
	var err error
	if strings.TrimSpace(req.Value) == "" {
		err = s.deps.Form.ClearField(req.Name)
	} else {
		err = s.deps.Form.SetField(req.Name, req.Value)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.candidateView())
}

func (s *Server) handleCandidateSample(c *gin.Context) {
	if err := s.deps.Form.LoadSample(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.candidateView())
}

// handleCandidateSubmit blocks until the classifier answers so the response carries
// the verdict.
func (s *Server) handleCandidateSubmit(c *gin.Context) {
	if _, err := s.deps.Form.Submit(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.candidateView())
}

func (s *Server) handleCandidateReset(c *gin.Context) {
	s.deps.Form.Reset()
	c.JSON(http.StatusOK, s.candidateView())
}

// verdictView adds rendered HTML to a verdict.
type verdictView struct {
	candidate.Verdict
	DetailsHTML string `json:"details_html,omitempty"`
}

func newVerdictView(v candidate.Verdict) verdictView {
	return verdictView{Verdict: v, DetailsHTML: renderMarkdown(v.Explanation)}
}
