package model

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

// ObjectGetter is the subset of the S3 client API that is used by S3Generator.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Generator reads the catalog of a user from a YAML document stored in S3.
//
// The object key may contain UserPlaceholder. Each call produces a new catalog snapshot.
type S3Generator struct {
	client ObjectGetter
	bucket string
	key    string
}

// NewS3Generator creates an S3Generator using the default AWS configuration for the given region.
func NewS3Generator(ctx context.Context, region string, bucket string, key string) (*S3Generator, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	sdkConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return NewS3GeneratorWithClient(s3.NewFromConfig(sdkConfig), bucket, key), nil
}

func NewS3GeneratorWithClient(client ObjectGetter, bucket string, key string) *S3Generator {
	return &S3Generator{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

func (g *S3Generator) GenerateModel(ctx context.Context, userId string) (*catalog.Catalog, error) {
	if userId == "" {
		return nil, matchmaking.ErrEmptyUserId
	}

	key := strings.ReplaceAll(g.key, UserPlaceholder, userId)
	result, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, generationError(err, "failed to get catalog s3://%s/%s", g.bucket, key)
	}
	defer func() { _ = result.Body.Close() }()

	cat, err := catalog.Decode(result.Body)
	if err != nil {
		return nil, generationError(err, "failed to decode catalog s3://%s/%s", g.bucket, key)
	}

	return cat, nil
}
