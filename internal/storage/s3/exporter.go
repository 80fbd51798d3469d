package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Exporter uploads report snapshots to a single S3 bucket. Keys map to object
// keys directly; credentials come from the default chain.
type Exporter struct {
	client *s3.Client
	bucket string
}

func NewExporter(ctx context.Context, region, bucket string) (*Exporter, error) {
	if bucket == "" {
		return nil, fmt.Errorf("report bucket required")
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Exporter{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// PutJSON writes a JSON payload under the given key.
func (e *Exporter) PutJSON(ctx context.Context, key string, payload []byte) error {
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}
