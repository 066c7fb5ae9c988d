package database

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-search/internal/database/memdb"
)

const testTable = "Courses"

func newTestClient(t *testing.T) (*Client, *memdb.Store) {
	t.Helper()
	store := memdb.New()
	return New(store, testTable, Options{Logger: zerolog.Nop()}), store
}

func TestEnsureTable_CreatesWithCourseIDHashKey(t *testing.T) {
	client, store := newTestClient(t)
	ctx := context.Background()

	result, err := client.EnsureTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, TableCreated, result)

	out, err := store.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(testTable)})
	require.NoError(t, err)

	desc := out.Table
	assert.Equal(t, types.TableStatusActive, desc.TableStatus)
	require.Len(t, desc.KeySchema, 1)
	assert.Equal(t, "CourseID", aws.ToString(desc.KeySchema[0].AttributeName))
	assert.Equal(t, types.KeyTypeHash, desc.KeySchema[0].KeyType)
	require.Len(t, desc.AttributeDefinitions, 1)
	assert.Equal(t, types.ScalarAttributeTypeS, desc.AttributeDefinitions[0].AttributeType)
	assert.EqualValues(t, 5, aws.ToInt64(desc.ProvisionedThroughput.ReadCapacityUnits))
	assert.EqualValues(t, 5, aws.ToInt64(desc.ProvisionedThroughput.WriteCapacityUnits))
}

func TestEnsureTable_CustomCapacity(t *testing.T) {
	store := memdb.New()
	client := New(store, "Other", Options{ReadCapacity: 1, WriteCapacity: 2, Logger: zerolog.Nop()})
	assert.Equal(t, "Other", client.TableName())

	_, err := client.EnsureTable(context.Background())
	require.NoError(t, err)

	out, err := store.DescribeTable(context.Background(), &dynamodb.DescribeTableInput{TableName: aws.String("Other")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, aws.ToInt64(out.Table.ProvisionedThroughput.ReadCapacityUnits))
	assert.EqualValues(t, 2, aws.ToInt64(out.Table.ProvisionedThroughput.WriteCapacityUnits))
}

func TestEnsureTable_SecondCallReportsAlreadyExists(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	first, err := client.EnsureTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, TableCreated, first)

	second, err := client.EnsureTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, TableAlreadyExists, second)

	require.NoError(t, client.PutCourse(ctx, &Course{CourseID: "1", Subject: "CYOP", CatalogNbr: "400"}))
}

func TestEnsureTable_Failure(t *testing.T) {
	client, store := newTestClient(t)
	boom := errors.New("access denied")
	store.CreateTableErr = boom

	result, err := client.EnsureTable(context.Background())
	assert.Equal(t, TableCreateFailed, result)
	assert.ErrorIs(t, err, boom)
}

func TestProvisionResult_String(t *testing.T) {
	assert.Equal(t, "created", TableCreated.String())
	assert.Equal(t, "already_exists", TableAlreadyExists.String())
	assert.Equal(t, "failed", TableCreateFailed.String())
}
