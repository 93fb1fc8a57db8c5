// Package storage mirrors external images into the project's S3 bucket
// so the portal never hotlinks news or social media CDNs. Uploads are
// best effort: on any failure the caller gets the original URL back.
package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/diretoriaja/monitor/internal/pkg/httpretry"
)

const (
	// DefaultBucket is the public portal bucket.
	DefaultBucket = "portal"

	downloadTimeout = 30 * time.Second
	maxImageBytes   = 10 << 20
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// objectPutter is the slice of the S3 client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader downloads external images and re-hosts them in S3.
type S3Uploader struct {
	client     objectPutter
	httpClient httpretry.HTTPDoer
	bucket     string
	baseURL    string
}

// Credentials selects how the uploader authenticates: static keys when
// both are set, a shared profile when named, otherwise the default
// credential chain (IAM role on ECS).
type Credentials struct {
	AccessKey string
	SecretKey string
	Profile   string
}

// NewS3Uploader builds the uploader from the AWS config.
func NewS3Uploader(ctx context.Context, bucket, region string, creds Credentials) (*S3Uploader, error) {
	var cfg aws.Config
	var err error

	switch {
	case creds.AccessKey != "" && creds.SecretKey != "":
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, "")),
		)
	case creds.Profile != "":
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithSharedConfigProfile(creds.Profile),
		)
	default:
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	if bucket == "" {
		bucket = DefaultBucket
	}
	return &S3Uploader{
		client:     s3.NewFromConfig(cfg),
		httpClient: httpretry.NewRetryClient(&http.Client{Timeout: downloadTimeout}, 3),
		bucket:     bucket,
		baseURL:    fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region),
	}, nil
}

// UploadFromURL downloads the image at imageURL, downscales oversized
// images and uploads the result under folder/. It returns the public
// object URL, or the original URL on any failure so callers never lose
// the image reference. An empty filename derives one from the URL hash.
func (u *S3Uploader) UploadFromURL(ctx context.Context, imageURL, folder, filename string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("empty image URL")
	}
	if strings.HasPrefix(imageURL, u.baseURL+"/") {
		return imageURL, nil
	}

	data, contentType, err := u.download(ctx, imageURL)
	if err != nil {
		return imageURL, fmt.Errorf("downloading image: %w", err)
	}

	data, contentType = shrinkIfNeeded(data, contentType)

	key := objectKey(imageURL, folder, filename, contentType)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return imageURL, fmt.Errorf("uploading to s3: %w", err)
	}

	log.Printf("[Storage] uploaded %s (%d bytes)", key, len(data))
	return u.baseURL + "/" + key, nil
}

func (u *S3Uploader) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading body: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty body")
	}

	return data, guessContentType(imageURL, resp.Header.Get("Content-Type")), nil
}

// guessContentType trusts the response header when it names an image,
// then falls back to the URL extension and finally to JPEG.
func guessContentType(imageURL, header string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(header, ";", 2)[0]))
	if strings.HasPrefix(ct, "image/") {
		return ct
	}

	lower := strings.ToLower(imageURL)
	switch {
	case strings.Contains(lower, ".png"):
		return "image/png"
	case strings.Contains(lower, ".webp"):
		return "image/webp"
	case strings.Contains(lower, ".gif"):
		return "image/gif"
	case strings.Contains(lower, ".svg"):
		return "image/svg+xml"
	}
	return "image/jpeg"
}

func extension(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "svg"):
		return "svg"
	}
	return "jpg"
}

// objectKey hashes the source URL so repeated runs reuse the same
// object instead of piling up copies.
func objectKey(imageURL, folder, filename, contentType string) string {
	if filename == "" {
		sum := md5.Sum([]byte(imageURL))
		filename = "img_" + hex.EncodeToString(sum[:])[:12]
	}
	return fmt.Sprintf("%s/%s.%s", folder, filename, extension(contentType))
}
