package basket

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the part of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Object struct {
	Bucket string
	Key    string
}

func (o s3Object) String() string {
	return "s3://" + o.Bucket + "/" + o.Key
}

// parseS3URI reports whether location is an s3:// URI and splits it.
func parseS3URI(location string) (s3Object, bool, error) {
	if !strings.HasPrefix(strings.ToLower(location), "s3://") {
		return s3Object{}, false, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return s3Object{}, true, fmt.Errorf("invalid S3 location %q: %w", location, err)
	}
	obj := s3Object{Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}
	if obj.Bucket == "" || obj.Key == "" {
		return s3Object{}, true, fmt.Errorf("invalid S3 location %q: expected s3://bucket/key", location)
	}
	return obj, true, nil
}

func fetchObject(ctx context.Context, getter ObjectGetter, obj s3Object) ([]byte, error) {
	out, err := getter.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", obj, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", obj, err)
	}
	return data, nil
}

// newDefaultObjectGetter builds an S3 client from the default AWS chain
// (environment, shared config, instance role).
func newDefaultObjectGetter(ctx context.Context) (ObjectGetter, error) {
	opts := []func(*config.LoadOptions) error{}
	if region := os.Getenv("AWS_REGION"); region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}
