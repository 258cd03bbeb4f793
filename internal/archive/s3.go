package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"dvc-go/internal/dvc"
)

// S3Options configures an S3Archive. Endpoint and the static keys are
// optional; without keys the default AWS credential chain is used.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Archive stores archive containers as key prefixes in one bucket:
//
//	<prefix>/<container>/grants.toml
//	<prefix>/<container>/<object>
type S3Archive struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Archive creates an S3-backed archive. No request is made until the
// archive is used; call ValidateSetup to check access.
func NewS3Archive(ctx context.Context, name string, opts S3Options) (*S3Archive, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 archive requires s3_bucket to be set")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{
		name:     name,
		bucket:   opts.Bucket,
		prefix:   strings.Trim(opts.Prefix, "/"),
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// CreateContainer writes an empty grants file that marks the container.
// An existing container keeps its grants.
func (a *S3Archive) CreateContainer(ctx context.Context, name string) (string, error) {
	if err := validSegment(name); err != nil {
		return "", err
	}
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(name, grantsFile)),
	})
	if err == nil {
		return name, nil
	}
	if !isNotFound(err) {
		return "", fmt.Errorf("checking container: %w", err)
	}
	if err := a.putGrants(ctx, name, &grantList{Grants: map[string]dvc.Role{}}); err != nil {
		return "", err
	}
	return name, nil
}

// Put uploads an object, switching to multipart for large payloads.
func (a *S3Archive) Put(ctx context.Context, container string, name string, r io.Reader, size int64) (string, error) {
	if err := validSegment(container); err != nil {
		return "", err
	}
	if err := validSegment(name); err != nil {
		return "", err
	}
	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.key(container, name)),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	return objectLocation(container, name), nil
}

// Get downloads the object at location into w.
func (a *S3Archive) Get(ctx context.Context, location string, w io.Writer) error {
	container, name, err := splitLocation(location)
	if err != nil {
		return err
	}
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(container, name)),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("object not found: %s", location)
		}
		return fmt.Errorf("downloading %s: %w", location, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading %s: %w", location, err)
	}
	return nil
}

// Share records a grant in the container's grants file. Access control is
// enforced by whatever serves the bucket to principals.
func (a *S3Archive) Share(ctx context.Context, location string, principal string, role dvc.Role) error {
	container := location
	if strings.Contains(location, "/") {
		c, _, err := splitLocation(location)
		if err != nil {
			return err
		}
		container = c
	}

	grants := &grantList{Grants: map[string]dvc.Role{}}
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(container, grantsFile)),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("container not found: %s", container)
		}
		return fmt.Errorf("reading grants: %w", err)
	}
	_, err = toml.NewDecoder(out.Body).Decode(grants)
	out.Body.Close()
	if err != nil {
		return fmt.Errorf("decoding grants: %w", err)
	}
	if grants.Grants == nil {
		grants.Grants = map[string]dvc.Role{}
	}

	grants.Grants[principal] = role
	return a.putGrants(ctx, container, grants)
}

// ValidateSetup verifies that the bucket exists and is reachable.
func (a *S3Archive) ValidateSetup(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		return fmt.Errorf("archive bucket %s not accessible: %w", a.bucket, err)
	}
	return nil
}

func (a *S3Archive) putGrants(ctx context.Context, container string, grants *grantList) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(grants); err != nil {
		return fmt.Errorf("encoding grants: %w", err)
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.key(container, grantsFile)),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
	})
	if err != nil {
		return fmt.Errorf("writing grants: %w", err)
	}
	return nil
}

func (a *S3Archive) key(container, name string) string {
	return s3Key(a.prefix, container, name)
}

func s3Key(prefix, container, name string) string {
	if prefix == "" {
		return path.Join(container, name)
	}
	return path.Join(prefix, container, name)
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

// Compile-time check that S3Archive implements dvc.Archive interface
var _ dvc.Archive = (*S3Archive)(nil)
