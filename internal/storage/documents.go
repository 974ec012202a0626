// Package storage keeps application documents in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	DownloadURLExpiry = 15 * time.Minute

	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrTooLarge        = errors.New("document exceeds the maximum size")
	ErrEmpty           = errors.New("document is empty")
	ErrUnsupportedType = errors.New("document type not supported, upload a pdf, png, jpeg or docx")
)

// ObjectAPI is the subset of *s3.Client used for documents.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Documents struct {
	objects   ObjectAPI
	presigner Presigner
	bucket    string
	maxBytes  int64
}

func New(objects ObjectAPI, presigner Presigner, bucket string, maxBytes int64) *Documents {
	return &Documents{
		objects:   objects,
		presigner: presigner,
		bucket:    bucket,
		maxBytes:  maxBytes,
	}
}

// NewS3 wires a Documents store to a real S3 client.
func NewS3(client *s3.Client, bucket string, maxBytes int64) *Documents {
	return New(client, s3.NewPresignClient(client), bucket, maxBytes)
}

func (d *Documents) MaxBytes() int64 {
	return d.maxBytes
}

// ObjectKey is applications/<applicationID>/<documentID>/<filename>.
func ObjectKey(applicationID, documentID, fileName string) string {
	return path.Join("applications", applicationID, documentID, SafeFileName(fileName))
}

// SafeFileName strips directories and characters that do not belong in an
// object key.
func SafeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)

	if name == "" || name == "." || name == ".." {
		return "document"
	}
	return name
}

// ContentType sniffs the first bytes of a file and returns its media type
// when it is one of the accepted document types.
func ContentType(head []byte, fileName string) (string, error) {
	sniffed := http.DetectContentType(head)
	ext := strings.ToLower(path.Ext(fileName))

	switch {
	case sniffed == "application/pdf":
		return sniffed, nil
	case sniffed == "image/png", sniffed == "image/jpeg":
		return sniffed, nil
	case sniffed == "application/zip" && ext == ".docx":
		return contentTypeDOCX, nil
	}

	return "", ErrUnsupportedType
}

// CheckSize validates a declared upload size.
func (d *Documents) CheckSize(size int64) error {
	if size <= 0 {
		return ErrEmpty
	}
	if d.maxBytes > 0 && size > d.maxBytes {
		return ErrTooLarge
	}
	return nil
}

func (d *Documents) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := d.CheckSize(size); err != nil {
		return err
	}

	_, err := d.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return nil
}

func (d *Documents) Delete(ctx context.Context, key string) error {
	_, err := d.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// DownloadURL presigns a GET for the object that prompts a download under
// fileName.
func (d *Documents) DownloadURL(ctx context.Context, key, fileName string) (string, error) {
	req, err := d.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(d.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", SafeFileName(fileName))),
	}, s3.WithPresignExpires(DownloadURLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}
