// Package memdb is an in-memory stand-in for DynamoDB that implements
// database.DynamoAPI. It keeps items in insertion order and understands the
// equality filters produced by the expression builder, which is all the
// catalog needs.
package memdb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

type Item = map[string]types.AttributeValue

type table struct {
	description types.TableDescription
	hashKey     string
	order       []string
	items       map[string]Item
}

// Store holds tables by name. The exported error fields make the matching
// operation fail, for exercising error paths.
type Store struct {
	mu     sync.Mutex
	tables map[string]*table

	CreateTableErr error
	PutItemErr     error
	ScanErr        error

	// PageSize caps how many items one Scan call reads before filtering.
	// Zero reads the whole table in one page.
	PageSize int

	ScanCalls int
	PutCalls  int
}

func New() *Store {
	return &Store{tables: make(map[string]*table)}
}

func validationError(format string, args ...any) error {
	return &smithy.GenericAPIError{Code: "ValidationException", Message: fmt.Sprintf(format, args...)}
}

func notFound(name string) error {
	return &types.ResourceNotFoundException{Message: aws.String("Requested resource not found: Table: " + name + " not found")}
}

func (s *Store) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateTableErr != nil {
		return nil, s.CreateTableErr
	}
	name := aws.ToString(params.TableName)
	if name == "" {
		return nil, validationError("TableName is required")
	}
	if _, ok := s.tables[name]; ok {
		return nil, &types.ResourceInUseException{Message: aws.String("Table already exists: " + name)}
	}

	var hashKey string
	for _, k := range params.KeySchema {
		if k.KeyType == types.KeyTypeHash {
			hashKey = aws.ToString(k.AttributeName)
		}
	}
	if hashKey == "" {
		return nil, validationError("KeySchema has no HASH key")
	}

	desc := types.TableDescription{
		TableName:            aws.String(name),
		TableStatus:          types.TableStatusActive,
		KeySchema:            params.KeySchema,
		AttributeDefinitions: params.AttributeDefinitions,
	}
	if pt := params.ProvisionedThroughput; pt != nil {
		desc.ProvisionedThroughput = &types.ProvisionedThroughputDescription{
			ReadCapacityUnits:  pt.ReadCapacityUnits,
			WriteCapacityUnits: pt.WriteCapacityUnits,
		}
	}
	s.tables[name] = &table{description: desc, hashKey: hashKey, items: make(map[string]Item)}

	return &dynamodb.CreateTableOutput{TableDescription: &desc}, nil
}

func (s *Store) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := aws.ToString(params.TableName)
	t, ok := s.tables[name]
	if !ok {
		return nil, notFound(name)
	}
	desc := t.description
	desc.ItemCount = aws.Int64(int64(len(t.items)))
	return &dynamodb.DescribeTableOutput{Table: &desc}, nil
}

func (s *Store) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.PutCalls++
	if s.PutItemErr != nil {
		return nil, s.PutItemErr
	}
	name := aws.ToString(params.TableName)
	t, ok := s.tables[name]
	if !ok {
		return nil, notFound(name)
	}
	if params.ConditionExpression != nil {
		return nil, validationError("memdb: condition expressions are not supported")
	}

	key, ok := params.Item[t.hashKey].(*types.AttributeValueMemberS)
	if !ok || key.Value == "" {
		return nil, validationError("One or more parameter values were invalid: Missing the key %s in the item", t.hashKey)
	}

	item := make(Item, len(params.Item))
	for k, v := range params.Item {
		item[k] = v
	}
	if _, exists := t.items[key.Value]; !exists {
		t.order = append(t.order, key.Value)
	}
	t.items[key.Value] = item

	return &dynamodb.PutItemOutput{}, nil
}

func (s *Store) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ScanCalls++
	if s.ScanErr != nil {
		return nil, s.ScanErr
	}
	name := aws.ToString(params.TableName)
	t, ok := s.tables[name]
	if !ok {
		return nil, notFound(name)
	}

	start := 0
	if esk, ok := params.ExclusiveStartKey[t.hashKey].(*types.AttributeValueMemberS); ok {
		for i, k := range t.order {
			if k == esk.Value {
				start = i + 1
				break
			}
		}
	}
	end := len(t.order)
	if s.PageSize > 0 && start+s.PageSize < end {
		end = start + s.PageSize
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range t.order[start:end] {
		item := t.items[k]
		ok, err := matches(item, aws.ToString(params.FilterExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Items = append(out.Items, item)
		}
	}
	out.Count = int32(len(out.Items))
	out.ScannedCount = int32(end - start)
	if end < len(t.order) {
		out.LastEvaluatedKey = Item{t.hashKey: &types.AttributeValueMemberS{Value: t.order[end-1]}}
	}

	return out, nil
}

// Items returns the stored items of a table in insertion order.
func (s *Store) Items(tableName string) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableName]
	if !ok {
		return nil
	}
	items := make([]Item, 0, len(t.order))
	for _, k := range t.order {
		items = append(items, t.items[k])
	}
	return items
}

// matches evaluates "a = :v AND b = :w" style filters, with or without the
// parentheses the expression builder adds around each clause.
func matches(item Item, filter string, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	if strings.TrimSpace(filter) == "" {
		return true, nil
	}
	for _, clause := range strings.Split(filter, " AND ") {
		clause = strings.TrimSpace(clause)
		clause = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(clause, "("), ")"))

		lhs, rhs, ok := strings.Cut(clause, " = ")
		if !ok {
			return false, validationError("memdb: unsupported filter clause %q", clause)
		}
		attr := strings.TrimSpace(lhs)
		if n, ok := names[attr]; ok {
			attr = n
		}
		want, ok := values[strings.TrimSpace(rhs)]
		if !ok {
			return false, validationError("memdb: no value supplied for %s", strings.TrimSpace(rhs))
		}
		if !equal(item[attr], want) {
			return false, nil
		}
	}
	return true, nil
}

func equal(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	default:
		return false
	}
}
