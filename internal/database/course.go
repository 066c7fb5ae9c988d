package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var (
	// ErrCourseNotFound is returned when no course matches a lookup.
	ErrCourseNotFound = errors.New("course not found")
	// ErrMissingCourseID is returned when a course has no hash key value.
	ErrMissingCourseID = errors.New("course has no CourseID")
)

// Course is one row of the courses table. The JSON tags match the course
// data file, the dynamodbav tags match the table attributes.
type Course struct {
	CourseID   string        `json:"CourseID" dynamodbav:"CourseID"`
	Subject    string        `json:"Subject" dynamodbav:"Subject"`
	CatalogNbr CatalogNumber `json:"CatalogNbr" dynamodbav:"CatalogNbr"`
	Title      string        `json:"Title" dynamodbav:"Title"`
	NumCredits Credits       `json:"NumCredits" dynamodbav:"NumCredits"`
}

// CatalogNumber is stored as a string. The data file may carry it as a
// string or a bare number; both decode to the same text.
type CatalogNumber string

func (n *CatalogNumber) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = CatalogNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("catalog number must be a string or a number: %w", err)
	}
	*n = CatalogNumber(num.String())
	return nil
}

// Credits is stored as a number. Numeric strings are accepted on input.
type Credits float64

func (c *Credits) UnmarshalJSON(b []byte) error {
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("credits must be numeric: %w", err)
	}
	if num == "" {
		*c = 0
		return nil
	}
	f, err := num.Float64()
	if err != nil {
		return fmt.Errorf("credits must be numeric: %w", err)
	}
	*c = Credits(f)
	return nil
}

// PutCourse writes a course unconditionally; an existing item with the same
// CourseID is replaced.
func (c *Client) PutCourse(ctx context.Context, course *Course) error {
	if course.CourseID == "" {
		return ErrMissingCourseID
	}

	item, err := attributevalue.MarshalMap(course)
	if err != nil {
		return fmt.Errorf("failed to marshal course: %w", err)
	}

	_, err = c.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put course %s: %w", course.CourseID, err)
	}

	return nil
}

// FindCourse scans the table for the first course with the given subject and
// catalog number. Which duplicate comes first is up to DynamoDB.
func (c *Client) FindCourse(ctx context.Context, subject, catalogNbr string) (*Course, error) {
	filter := expression.Name("Subject").Equal(expression.Value(subject)).
		And(expression.Name("CatalogNbr").Equal(expression.Value(catalogNbr)))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan filter: %w", err)
	}

	// The filter runs after each page is read, so a page can come back empty
	// while later pages still hold the match.
	paginator := dynamodb.NewScanPaginator(c.db, &dynamodb.ScanInput{
		TableName:                 aws.String(c.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan courses: %w", err)
		}
		pages++
		c.logger.Debug().Int("page", pages).Int32("scanned", page.ScannedCount).Int32("matched", page.Count).Msg("scanned courses")
		if len(page.Items) == 0 {
			continue
		}

		var course Course
		if err := attributevalue.UnmarshalMap(page.Items[0], &course); err != nil {
			return nil, fmt.Errorf("failed to unmarshal course: %w", err)
		}
		return &course, nil
	}

	return nil, ErrCourseNotFound
}
