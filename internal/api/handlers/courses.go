package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// TitleFinder looks up a course title by subject and catalog number.
type TitleFinder interface {
	FindTitle(ctx context.Context, subject, catalogNbr string) (string, bool)
}

// TitleResponse is the body of a successful lookup.
type TitleResponse struct {
	Subject    string `json:"subject"`
	CatalogNbr string `json:"catalogNbr"`
	Title      string `json:"title"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CourseHandler handles HTTP requests for course lookups
type CourseHandler struct {
	finder TitleFinder
}

// NewCourseHandler creates a new CourseHandler with the provided finder
func NewCourseHandler(finder TitleFinder) *CourseHandler {
	return &CourseHandler{finder: finder}
}

// GetTitle returns the title of a course
// Endpoint: GET /courses/title?subject={subject}&catalogNbr={catalogNbr}
func (h *CourseHandler) GetTitle(c *fiber.Ctx) error {
	subject := c.Query("subject")
	catalogNbr := c.Query("catalogNbr")

	if subject == "" || catalogNbr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Both a subject and a catalog number are required",
		})
	}

	title, ok := h.finder.FindTitle(c.UserContext(), subject, catalogNbr)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: fmt.Sprintf("%s %s not found", subject, catalogNbr),
		})
	}

	return c.JSON(TitleResponse{
		Subject:    subject,
		CatalogNbr: catalogNbr,
		Title:      title,
	})
}

// Health reports that the process is serving
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
