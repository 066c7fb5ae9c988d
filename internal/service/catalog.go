package service

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/catalog-search/internal/database"
)

// CourseStore is the storage the catalog runs against.
type CourseStore interface {
	EnsureTable(ctx context.Context) (database.ProvisionResult, error)
	PutCourse(ctx context.Context, course *database.Course) error
	FindCourse(ctx context.Context, subject, catalogNbr string) (*database.Course, error)
}

// CatalogService provisions, loads and searches the course catalog.
type CatalogService struct {
	store  CourseStore
	logger zerolog.Logger
}

// NewCatalogService creates a new CatalogService over the given store.
func NewCatalogService(store CourseStore, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

// EnsureTable makes sure the courses table exists. Failures are logged and
// reported in the result; they never stop the program.
func (s *CatalogService) EnsureTable(ctx context.Context) database.ProvisionResult {
	result, err := s.store.EnsureTable(ctx)
	switch result {
	case database.TableCreated:
		s.logger.Info().Msg("Table created!")
	case database.TableAlreadyExists:
		s.logger.Info().Msg("Table already exists")
	default:
		s.logger.Error().Err(err).Str("code", errorCode(err)).Msg("Table could not be created")
	}
	return result
}

// FindTitle returns the title of the first course matching subject and
// catalog number. A failed scan reads as not found; the cause is only logged.
// A course without a title also counts as not found.
func (s *CatalogService) FindTitle(ctx context.Context, subject, catalogNbr string) (string, bool) {
	course, err := s.store.FindCourse(ctx, subject, catalogNbr)
	if err != nil {
		if !errors.Is(err, database.ErrCourseNotFound) {
			s.logger.Warn().Err(err).
				Str("code", errorCode(err)).
				Str("subject", subject).
				Str("catalog_nbr", catalogNbr).
				Msg("course lookup failed")
		}
		return "", false
	}
	if course.Title == "" {
		return "", false
	}
	return course.Title, true
}

// errorCode extracts the DynamoDB error code, if there is one.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
