package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type objectAPI interface {
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type uploadAPI interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Storage keeps objects in a single S3 (or S3-compatible) bucket.
type S3Storage struct {
	bucket     string
	publicBase string
	presignTTL time.Duration

	objects  objectAPI
	uploader uploadAPI
	presign  presignAPI
}

// NewS3Storage wraps client. When publicBase is set, DownloadURL joins it with
// the object path (public bucket); otherwise it returns presigned GET URLs.
func NewS3Storage(client *s3.Client, bucket, publicBase string, presignTTL time.Duration) *S3Storage {
	return &S3Storage{
		bucket:     bucket,
		publicBase: publicBase,
		presignTTL: presignTTL,
		objects:    client,
		uploader:   manager.NewUploader(client),
		presign:    s3.NewPresignClient(client),
	}
}

// Attachment returns the Content-Disposition value that makes browsers save a
// response as filename.
func Attachment(filename string) string {
	if filename == "" {
		return "attachment"
	}
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", asciiName(filename), url.PathEscape(filename))
}

// asciiName is the fallback filename for clients that ignore filename*.
func asciiName(name string) string {
	b := make([]byte, 0, len(name))
	for _, r := range name {
		switch {
		case r == '"' || r == '\\' || r < 0x20 || r > 0x7e:
			b = append(b, '_')
		default:
			b = append(b, byte(r))
		}
	}
	return string(b)
}

func (s *S3Storage) Put(ctx context.Context, path string, r io.Reader, size int64, contentType, filename string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   r,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if filename != "" {
		in.ContentDisposition = aws.String(Attachment(filename))
	}
	if size >= 0 && size < manager.DefaultUploadPartSize {
		in.ContentLength = aws.Int64(size)
	}

	if _, err := s.uploader.Upload(ctx, in); err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	return nil
}

// DownloadURL returns the public URL of path when a public base is set. Such
// objects carry their Content-Disposition from Put. Otherwise it presigns a GET
// that overrides the response disposition with filename.
func (s *S3Storage) DownloadURL(ctx context.Context, path, filename string) (string, error) {
	if s.publicBase != "" {
		u, err := url.JoinPath(s.publicBase, path)
		if err != nil {
			return "", fmt.Errorf("public url for %s: %w", path, err)
		}
		return u, nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(path),
		ResponseContentDisposition: aws.String(Attachment(filename)),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", path, err)
	}
	return req.URL, nil
}

// Remove deletes paths in one request. Per-key failures reported by the
// bucket are joined into the returned error.
func (s *S3Storage) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	ids := make([]types.ObjectIdentifier, 0, len(paths))
	for _, p := range paths {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(p)})
	}

	out, err := s.objects.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("remove objects: %w", err)
	}

	var errs []error
	for _, e := range out.Errors {
		errs = append(errs, fmt.Errorf("remove %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
	}
	return errors.Join(errs...)
}

func (s *S3Storage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	p := s3.NewListObjectsV2Paginator(s.objects, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []ObjectInfo
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, o := range page.Contents {
			objects = append(objects, ObjectInfo{
				Path:         aws.ToString(o.Key),
				Size:         aws.ToInt64(o.Size),
				LastModified: aws.ToTime(o.LastModified),
			})
		}
	}
	return objects, nil
}
