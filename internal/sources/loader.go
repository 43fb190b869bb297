package sources

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bilgisen/faithcheck/internal/config"
	"github.com/bilgisen/faithcheck/internal/logger"
	"github.com/bilgisen/faithcheck/internal/models"
)

//go:embed default_sources.yaml
var defaultSources []byte

type table struct {
	Sources []models.SourceRecord `yaml:"sources"`
}

// Parse decodes and validates a YAML source table
func Parse(data []byte) ([]models.SourceRecord, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing source table: %w", err)
	}

	v := validator.New()
	for i, rec := range t.Sources {
		rec.Domain = NormalizeDomain(rec.Domain)
		if err := v.Struct(rec); err != nil {
			return nil, fmt.Errorf("source %d (%q): %w", i, rec.Domain, err)
		}
		t.Sources[i] = rec
	}
	return t.Sources, nil
}

// LoadDefault parses the table compiled into the binary
func LoadDefault() ([]models.SourceRecord, error) {
	return Parse(defaultSources)
}

// LoadFile parses a table from disk
func LoadFile(path string) ([]models.SourceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source table: %w", err)
	}
	return Parse(data)
}

// ObjectGetter is the slice of the S3 client used to fetch the table
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadS3 parses a table stored as an S3 (or R2) object
func LoadS3(ctx context.Context, client ObjectGetter, bucket, key string) ([]models.SourceRecord, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	return Parse(data)
}

// NewS3Client builds an S3 client, pointed at Cloudflare R2 when an endpoint is configured
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.R2Endpoint != "" {
		opts = append(opts, awsconfig.WithRegion("auto"))
	}
	if cfg.R2AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.R2Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.R2Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Load builds the resolver from the configured table location:
// an S3 object, then a local file, then the embedded default.
func Load(ctx context.Context, cfg *config.Config) (*Resolver, error) {
	log := logger.Component("sources")

	var (
		records []models.SourceRecord
		origin  string
		err     error
	)
	switch {
	case cfg.SourcesS3Bucket != "":
		origin = fmt.Sprintf("s3://%s/%s", cfg.SourcesS3Bucket, cfg.SourcesS3Key)
		var client *s3.Client
		client, err = NewS3Client(ctx, cfg)
		if err == nil {
			records, err = LoadS3(ctx, client, cfg.SourcesS3Bucket, cfg.SourcesS3Key)
		}
	case cfg.SourcesPath != "":
		origin = cfg.SourcesPath
		records, err = LoadFile(cfg.SourcesPath)
	default:
		origin = "embedded"
		records, err = LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	r := NewResolver(records)
	log.Info().
		Str("origin", origin).
		Int("sources", r.Len()).
		Msg("Loaded source metadata")
	return r, nil
}
