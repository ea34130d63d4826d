package imagestore

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/redmonkez12/marketplace-api/internal/config"
)

// DeleteObjects accepts at most this many keys per call
const deleteBatchSize = 1000

// S3API is the subset of the S3 client used by the store
type S3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Store keeps images in an S3-compatible bucket (AWS, MinIO, R2...)
type S3Store struct {
	client    S3API
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewS3Store builds an S3 client from the storage configuration
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3StoreWithClient(client, cfg.Bucket, cfg.PublicURL()), nil
}

func NewS3StoreWithClient(client S3API, bucket, publicURL string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// Upload stores the file and returns its reference
func (s *S3Store) Upload(ctx context.Context, file File, opts UploadOptions) (*ImageRef, error) {
	key := cleanKey(opts.PublicID)
	if key == "" {
		folder := cleanKey(opts.Folder)
		if folder == "" {
			return nil, ErrEmptyKey
		}
		key = objectName(folder, file.Filename)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file.Body,
		ContentType: aws.String(contentTypeOf(file)),
	}
	if file.Size > 0 {
		input.ContentLength = aws.Int64(file.Size)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	url := s.publicURL + "/" + key
	ref := &ImageRef{
		PublicID:     key,
		Folder:       path.Dir(key),
		URL:          url,
		SecureURL:    url,
		Format:       formatOf(file),
		ResourceType: "image",
		Bytes:        file.Size,
		CreatedAt:    s.now().UTC(),
	}
	if out != nil {
		ref.ETag = strings.Trim(aws.ToString(out.ETag), `"`)
	}

	return ref, nil
}

// DeleteByPrefix removes every object stored under the folder prefix
func (s *S3Store) DeleteByPrefix(ctx context.Context, prefix string) error {
	p := folderPrefix(prefix)
	if p == "" {
		return ErrEmptyKey
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(p),
	})

	var batch []types.ObjectIdentifier
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", p, err)
		}

		for _, obj := range page.Contents {
			batch = append(batch, types.ObjectIdentifier{Key: obj.Key})
			if len(batch) == deleteBatchSize {
				if err := s.deleteBatch(ctx, batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		}
	}

	if len(batch) > 0 {
		return s.deleteBatch(ctx, batch)
	}

	return nil
}

func (s *S3Store) deleteBatch(ctx context.Context, ids []types.ObjectIdentifier) error {
	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: ids,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}

	if out != nil && len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("failed to delete %d objects, first %s: %s",
			len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
	}

	return nil
}

// DeleteFolder removes the folder placeholder object. Buckets have no real
// folders, so this only matters for consoles that create such markers.
func (s *S3Store) DeleteFolder(ctx context.Context, folder string) error {
	p := folderPrefix(folder)
	if p == "" {
		return ErrEmptyKey
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	})
	if err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", p, err)
	}

	return nil
}
