package storage

import (
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/log"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"slices"
	"strings"
)

var (
	AllowImage = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

	ErrInvalidDataURI   = errors.New("file must be a base64 encoded data URI")
	ErrFileTypeNotAllow = errors.New("file type is not allowed")
	ErrEmptyFile        = errors.New("file is empty")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type (
	// File is an uploaded payload with its declared content type.
	File struct {
		Data        []byte
		ContentType string
	}

	AwsS3 interface {
		UploadFile(fileName string, file *File, folder string, allowTypes ...string) (string, error)
		DeleteFile(objectKey string) error
		GetObjectKeyFromLink(link string) string
		GetPublicLinkKey(objectKey string) string
	}

	awsS3 struct {
		client *s3.Client
		bucket string
		region string
	}
)

func NewAwsS3() AwsS3 {
	region := utils.GetConfig("AWS_S3_REGION")
	cfg, err := config.LoadDefaultConfig(
		context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		log.L.Fatal("load aws config error", zap.Error(err))
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		bucket: utils.GetConfig("AWS_S3_BUCKET"),
		region: region,
	}
}

// DecodeDataURI parses "data:<type>;base64,<payload>".
func DecodeDataURI(uri string) (*File, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidDataURI
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidDataURI
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return &File{Data: data, ContentType: contentType}, nil
}

func checkFile(file *File, allowTypes []string) error {
	if file == nil || len(file.Data) == 0 {
		return ErrEmptyFile
	}
	if len(allowTypes) > 0 && !slices.Contains(allowTypes, file.ContentType) {
		return ErrFileTypeNotAllow
	}
	return nil
}

func (a *awsS3) UploadFile(fileName string, file *File, folder string, allowTypes ...string) (string, error) {
	if err := checkFile(file, allowTypes); err != nil {
		return "", err
	}
	objectKey := fmt.Sprintf("%s/%s-%s%s", folder, fileName, uuid.NewString(), extensions[file.ContentType])
	if err := a.put(objectKey, file); err != nil {
		return "", err
	}
	return objectKey, nil
}

func (a *awsS3) put(objectKey string, file *File) error {
	_, err := a.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectKey, err)
	}
	return nil
}

func (a *awsS3) DeleteFile(objectKey string) error {
	_, err := a.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}

func (a *awsS3) GetObjectKeyFromLink(link string) string {
	prefix := a.GetPublicLinkKey("")
	if !strings.HasPrefix(link, prefix) {
		return ""
	}
	return strings.TrimPrefix(link, prefix)
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, objectKey)
}
