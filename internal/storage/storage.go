package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

// MaxImageSize bounds mosque image uploads.
const MaxImageSize = 5 << 20

var ErrUnsupportedType = errors.New("unsupported image type")

// Storage persists mosque images and returns their public URL.
type Storage interface {
	SaveImage(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
}

type LocalStorage struct {
	uploadDir string
	publicURL string
}

type SpacesStorage struct {
	client *s3.S3
	bucket string
	cdnURL string
}

// NewLocalStorage stores files under uploadDir; publicURL is the path the
// directory is served from (e.g. "/uploads").
func NewLocalStorage(uploadDir, publicURL string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir, publicURL: strings.TrimSuffix(publicURL, "/")}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SpacesStorage{
		client: s3.New(sess),
		bucket: bucket,
		cdnURL: strings.TrimSuffix(cdnURL, "/"),
	}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// ImageKey builds the object key for a mosque image:
// mosques/<slug>/<basename>_<timestamp>.<ext>. Only image extensions are
// accepted.
func ImageKey(slug, originalFilename string, now time.Time) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	contentType, ok := imageTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	baseName := strings.TrimSuffix(filepath.Base(originalFilename), filepath.Ext(originalFilename))
	baseName = unsafeChars.ReplaceAllString(strings.ReplaceAll(baseName, " ", "_"), "")
	if baseName == "" {
		baseName = "image"
	}

	key := fmt.Sprintf("mosques/%s/%s_%s%s", slug, baseName, now.Format("20060102_150405"), ext)
	return key, contentType, nil
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

func (ls *LocalStorage) SaveImage(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	dest := filepath.Join(ls.uploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	log.Debug().Str("key", key).Str("path", dest).Msg("stored mosque image locally")
	return ls.publicURL + "/" + key, nil
}

func (ss *SpacesStorage) SaveImage(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := ss.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload image to Spaces")
		return "", fmt.Errorf("failed to upload to Spaces: %w", err)
	}
	return fmt.Sprintf("%s/%s", ss.cdnURL, key), nil
}
