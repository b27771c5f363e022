package ui

import (
	"net/http"
	"strconv"

	"exodash/domain/lightcurve"
	apperrors "exodash/internal/errors"

	"github.com/gin-gonic/gin"
)

// handleLightCurve synthesizes a curve from ?depth= (ppm) and ?duration= (hours).
func (s *Server) handleLightCurve(c *gin.Context) {
	depth, err := strconv.ParseFloat(c.Query("depth"), 64)
	if err != nil {
		writeError(c, apperrors.InvalidInput("depth must be a number in ppm"))
		return
	}
	duration, err := strconv.ParseFloat(c.Query("duration"), 64)
	if err != nil {
		writeError(c, apperrors.InvalidInput("duration must be a number of hours"))
		return
	}
	points := s.deps.CurvePoints
	if raw := c.Query("points"); raw != "" {
		if points, err = strconv.Atoi(raw); err != nil {
			writeError(c, apperrors.InvalidInput("points must be an integer"))
			return
		}
	}

	samples, err := lightcurve.Synthesize(depth, duration, points)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"samples":        samples,
		"window":         lightcurve.WindowWidth(duration, points),
		"min_brightness": lightcurve.MinBrightness(samples),
	})
}

// handlePhysics buckets ?teq= (K) and ?radius= (Earth radii). Absent or unparsable
// values come back as Unknown.
func (s *Server) handlePhysics(c *gin.Context) {
	teq := queryFloat(c, "teq")
	radius := queryFloat(c, "radius")
	c.JSON(http.StatusOK, gin.H{
		"breakpoints":       s.deps.Physics.Table().Name,
		"habitability_zone": s.deps.Physics.HabitabilityZone(teq),
		"planet_category":   s.deps.Physics.PlanetCategory(radius),
	})
}

func (s *Server) handleAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Analytics.Load(c.Request.Context()))
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &x
}
