package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// AvatarUploader stores profile images in S3 and returns their public
// URL. A nil uploader means image storage is not configured; signup
// simply skips the upload in that case.
type AvatarUploader struct {
	sess   *session.Session
	bucket string
	region string
}

// NewAvatarUploader opens an AWS session for the given bucket. Returns
// nil without error when the bucket is not configured, so callers can
// treat the uploader as optional.
func NewAvatarUploader(bucket, region string) (*AvatarUploader, error) {
	if bucket == "" {
		return nil, nil
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return &AvatarUploader{sess: sess, bucket: bucket, region: region}, nil
}

// Upload puts the file into the bucket under a date-partitioned UUID
// key and returns its URL. Only image content types are accepted.
func (u *AvatarUploader) Upload(file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := fmt.Sprintf("avatars/%s/%s%s",
		time.Now().UTC().Format("2006/01"),
		uuid.New().String(),
		filepath.Ext(file.Filename),
	)

	svc := s3.New(u.sess)
	if _, err := svc.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}
