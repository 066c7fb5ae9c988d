package database

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"

	appconfig "github.com/catalog-search/internal/config"
)

// DynamoAPI is the subset of *dynamodb.Client the catalog uses. It also
// satisfies dynamodb.DescribeTableAPIClient and dynamodb.ScanAPIClient so the
// SDK waiter and paginator can run on top of it.
type DynamoAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Client wraps the DynamoDB API for the courses table.
type Client struct {
	db            DynamoAPI
	tableName     string
	readCapacity  int64
	writeCapacity int64
	tableWait     time.Duration
	logger        zerolog.Logger
}

// Options tunes a Client. Zero values fall back to the package defaults.
type Options struct {
	ReadCapacity  int64
	WriteCapacity int64
	TableWait     time.Duration
	Logger        zerolog.Logger
}

// New creates a Client over an existing DynamoDB API implementation.
func New(db DynamoAPI, tableName string, opts Options) *Client {
	if opts.ReadCapacity == 0 {
		opts.ReadCapacity = appconfig.DefaultCapacity
	}
	if opts.WriteCapacity == 0 {
		opts.WriteCapacity = appconfig.DefaultCapacity
	}
	if opts.TableWait == 0 {
		opts.TableWait = appconfig.DefaultTableWait
	}
	return &Client{
		db:            db,
		tableName:     tableName,
		readCapacity:  opts.ReadCapacity,
		writeCapacity: opts.WriteCapacity,
		tableWait:     opts.TableWait,
		logger:        opts.Logger.With().Str("table", tableName).Logger(),
	}
}

// NewClient initializes the DynamoDB client from the default AWS config chain.
// A configured endpoint is used for LocalStack or DynamoDB Local.
func NewClient(ctx context.Context, cfg *appconfig.Config, logger zerolog.Logger) (*Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, func(o *config.LoadOptions) error {
		if cfg.Region != "" {
			o.Region = cfg.Region
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return New(dynamodb.NewFromConfig(awsCfg), cfg.TableName, Options{
		ReadCapacity:  cfg.ReadCapacity,
		WriteCapacity: cfg.WriteCapacity,
		TableWait:     cfg.TableWait,
		Logger:        logger,
	}), nil
}

// TableName returns the table name
func (c *Client) TableName() string {
	return c.tableName
}
