package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// HashKey is the single key attribute of the courses table.
const HashKey = "CourseID"

// ProvisionResult reports what EnsureTable observed.
type ProvisionResult int

// Outcomes of EnsureTable.
const (
	TableCreateFailed ProvisionResult = iota
	TableCreated
	TableAlreadyExists
)

func (r ProvisionResult) String() string {
	switch r {
	case TableCreated:
		return "created"
	case TableAlreadyExists:
		return "already_exists"
	default:
		return "failed"
	}
}

// EnsureTable creates the courses table and waits for it to become ACTIVE.
// An existing table is reported as TableAlreadyExists rather than an error.
func (c *Client) EnsureTable(ctx context.Context) (ProvisionResult, error) {
	_, err := c.db.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(c.tableName),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(HashKey), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(HashKey), AttributeType: types.ScalarAttributeTypeS},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(c.readCapacity),
			WriteCapacityUnits: aws.Int64(c.writeCapacity),
		},
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return TableAlreadyExists, nil
		}
		return TableCreateFailed, fmt.Errorf("failed to create table: %w", err)
	}

	c.logger.Debug().Dur("max_wait", c.tableWait).Msg("waiting for table to become active")
	waiter := dynamodb.NewTableExistsWaiter(c.db)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(c.tableName)}, c.tableWait)
	if err != nil {
		return TableCreateFailed, fmt.Errorf("failed waiting for table to become active: %w", err)
	}

	return TableCreated, nil
}
