package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Raw workbook archival to S3, keyed by file hash so a re-upload never
// creates a second object. Disabled unless the bucket env var is set.

func archiveBucket() string {
	return os.Getenv("WEIGH_S3_BUCKET")
}

func archiveRegion() string {
	if r := os.Getenv("WEIGH_S3_REGION"); r != "" {
		return r
	}
	return "ap-southeast-1"
}

func isS3Enabled() bool {
	return archiveBucket() != ""
}

func buildArchiveKey(fileHash, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".xlsx"
	}
	return "weigh-uploads/" + fileHash + ext
}

func detectContentType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}

func archiveWorkbook(ctx context.Context, key string, data []byte) (string, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(archiveRegion()))
	if err != nil {
		return "", fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(archiveBucket()),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(detectContentType(data)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put workbook to s3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", archiveBucket(), key), nil
}
