package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/crtfolio/internal/catalog"
	"github.com/Zachkp/crtfolio/internal/geo"
)

// handleResume serves the resume as JSON, or as a text download with
// format=txt. Unknown formats fall back to JSON.
func (s *Server) handleResume(c *gin.Context) {
	resume := s.catalog.Resume
	if strings.EqualFold(c.DefaultQuery("format", "json"), "txt") {
		c.Header("Content-Disposition", `attachment; filename="`+catalog.ResumeFilename+`"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(resume.Text()))
		return
	}
	c.JSON(http.StatusOK, resume)
}

// handleWhereAmI reports the caller's city for the boot greeting.
func (s *Server) handleWhereAmI(c *gin.Context) {
	city := geo.Unknown
	if s.locator != nil {
		city = s.locator.City(c.Request.Context(), c.ClientIP())
	}
	c.JSON(http.StatusOK, gin.H{"city": city})
}
