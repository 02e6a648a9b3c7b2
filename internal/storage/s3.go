// Package storage provides the object store that holds uploaded posters
// and avatars.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"onlyfilms/internal/config"
)

// Uploader stores a blob under a key and returns its public URL. The file
// upload middleware depends on this interface so tests can fake it.
type Uploader interface {
	Upload(key string, body io.Reader, contentType string) (string, error)
}

// S3Client talks to AWS S3 or a MinIO endpoint.
type S3Client struct {
	api    *s3.S3
	bucket string
}

// NewS3Client builds a client from configuration. When AWSEndpoint is set,
// path-style addressing is enabled for MinIO compatibility.
func NewS3Client(cfg config.Config) (*S3Client, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")
	}
	if cfg.AWSEndpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.AWSEndpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create AWS session: %w", err)
	}
	return &S3Client{api: s3.New(sess), bucket: cfg.S3Bucket}, nil
}

// Upload writes the body to the bucket and returns the object URL.
func (c *S3Client) Upload(key string, body io.Reader, contentType string) (string, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, body); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	_, err := c.api.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}
	return c.objectURL(key), nil
}

// Delete removes an object. Used when a replaced avatar or poster should
// not linger.
func (c *S3Client) Delete(key string) error {
	_, err := c.api.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete from S3: %w", err)
	}
	return nil
}

func (c *S3Client) objectURL(key string) string {
	endpoint := aws.StringValue(c.api.Config.Endpoint)
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("http://%s/%s/%s", endpoint, c.bucket, key)
	}
	region := aws.StringValue(c.api.Config.Region)
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, region, key)
}
