package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix for every environment override.
	EnvPrefix = "CATALOG"
	// DefaultFile is read from the working directory when CATALOG_CONFIG is unset.
	DefaultFile = "catalog.yaml"

	DefaultTableName = "Courses"
	DefaultDataFile  = "homework_2/course_items.json"
	DefaultCapacity  = 5
	DefaultTableWait = 5 * time.Minute
	DefaultLogLevel  = "info"

	// legacyTableEnv is the variable the Lambda deployment already sets.
	legacyTableEnv = "DYNAMODB_TABLE"
)

// Config holds everything the program needs, built once at start-up and
// passed to each component. Apart from AWS_REGION every variable carries the
// CATALOG_ prefix, e.g. CATALOG_TABLE_NAME.
type Config struct {
	Region        string        `yaml:"region" envconfig:"AWS_REGION"`
	Endpoint      string        `yaml:"endpoint" split_words:"true"`
	TableName     string        `yaml:"tableName" split_words:"true"`
	DataFile      string        `yaml:"dataFile" split_words:"true"`
	ReadCapacity  int64         `yaml:"readCapacity" split_words:"true"`
	WriteCapacity int64         `yaml:"writeCapacity" split_words:"true"`
	TableWait     time.Duration `yaml:"tableWait" split_words:"true"`
	LogLevel      string        `yaml:"logLevel" split_words:"true"`
	LogPretty     bool          `yaml:"logPretty" split_words:"true"`
	HTTPAddr      string        `yaml:"httpAddr" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TableName:     DefaultTableName,
		DataFile:      DefaultDataFile,
		ReadCapacity:  DefaultCapacity,
		WriteCapacity: DefaultCapacity,
		TableWait:     DefaultTableWait,
		LogLevel:      DefaultLogLevel,
		LogPretty:     true,
	}
}

// Load layers the defaults, the YAML file at path (if it exists) and the
// environment, in that order. An empty path means CATALOG_CONFIG or DefaultFile.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path == "" {
		path = DefaultFile
	}
	if err := readFile(path, &cfg); err != nil {
		return nil, err
	}

	if table := os.Getenv(legacyTableEnv); table != "" {
		cfg.TableName = table
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings DynamoDB would refuse anyway.
func (c *Config) Validate() error {
	if c.TableName == "" {
		return errors.New("table name must not be empty")
	}
	if c.ReadCapacity < 1 || c.WriteCapacity < 1 {
		return fmt.Errorf("capacity must be at least 1 (read=%d write=%d)", c.ReadCapacity, c.WriteCapacity)
	}
	if c.TableWait <= 0 {
		return fmt.Errorf("table wait must be positive, got %s", c.TableWait)
	}
	return nil
}
