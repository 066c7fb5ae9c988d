package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/catalog-search/internal/database"
)

// LoadSummary describes how far a load got.
type LoadSummary struct {
	Read    int
	Written int
}

// LoadCourses reads a JSON array of courses from path and writes each one in
// file order. The first failure stops the load; whatever was written before it
// stays in the table.
func (s *CatalogService) LoadCourses(ctx context.Context, path string) (LoadSummary, error) {
	var summary LoadSummary

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Issue loading items!")
		return summary, fmt.Errorf("failed to read course file: %w", err)
	}

	var courses []database.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Issue loading items!")
		return summary, fmt.Errorf("failed to parse course file %s: %w", path, err)
	}
	summary.Read = len(courses)

	for i := range courses {
		course := &courses[i]
		s.logger.Info().Str("course_id", course.CourseID).
			Msgf("Adding course: %s%s", course.Subject, course.CatalogNbr)

		if err := s.store.PutCourse(ctx, course); err != nil {
			s.logger.Error().Err(err).Str("code", errorCode(err)).Msg("Issue loading items!")
			return summary, err
		}
		summary.Written++
	}

	s.logger.Debug().Int("written", summary.Written).Msg("course load finished")
	return summary, nil
}
