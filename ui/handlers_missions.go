package ui

import (
	"net/http"
	"strconv"

	"exodash/adapters/csvio"
	"exodash/domain/mission"

	"github.com/gin-gonic/gin"
)

type missionSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Features int    `json:"feature_count"`
}

func (s *Server) handleMissions(c *gin.Context) {
	ids := mission.Missions()
	out := make([]missionSummary, 0, len(ids))
	for _, id := range ids {
		schema, err := mission.SchemaFor(id)
		if err != nil {
			writeError(c, err)
			return
		}
		out = append(out, missionSummary{ID: id, Title: schema.Title, Features: len(schema.Features)})
	}
	c.JSON(http.StatusOK, gin.H{"missions": out})
}

func (s *Server) handleMissionSchema(c *gin.Context) {
	schema, err := mission.SchemaFor(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

func (s *Server) handleMissionSample(c *gin.Context) {
	sample, err := mission.SampleFor(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sample)
}

// handleMissionTemplate serves an upload template; ?sample=false omits the example row.
func (s *Server) handleMissionTemplate(c *gin.Context) {
	schema, err := mission.SchemaFor(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var row []string
	if withSample, err := strconv.ParseBool(c.DefaultQuery("sample", "true")); err != nil || withSample {
		row = schema.CSVSample()
	}
	body, err := csvio.Template(schema.CSVHeader(), row)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+schema.MissionID+`-template.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
