package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/githuba42r/imagetools/internal/server/config"
	"github.com/githuba42r/imagetools/internal/server/models"
	"github.com/githuba42r/imagetools/internal/server/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// Upload is a registered image together with a presigned PUT URL the
// client uploads the payload to.
type Upload struct {
	ImageID   string
	UploadURL string
}

// ImageService registers image uploads and hands out presigned object
// storage URLs. The payload never passes through the API server.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

// NewImageService constructs an ImageService using repositories and server config.
func NewImageService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *ImageService {
	return &ImageService{db: db, repomanager: m, config: cfg}
}

func storageKey(sessionID, imageID, fileName string) string {
	return fmt.Sprintf("%s/%s_%s", sessionID, imageID, fileName)
}

func (s *ImageService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// CreateUpload registers a new image for the caller and returns a presigned
// PUT URL valid for 15 minutes.
func (s *ImageService) CreateUpload(ctx context.Context, identity *Identity, fileName, contentType string) (*Upload, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, err
	}

	imageID := uuid.NewString()
	key := storageKey(identity.SessionID, imageID, fileName)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %v", err)
	}

	image := &models.Image{
		ID:         imageID,
		SessionID:  identity.SessionID,
		DeviceID:   identity.DeviceID,
		FileName:   fileName,
		StorageKey: key,
	}
	if err := s.repomanager.Images(s.db).Create(ctx, image); err != nil {
		return nil, fmt.Errorf("error creating image: %v", err)
	}

	return &Upload{ImageID: imageID, UploadURL: req.URL}, nil
}

// ListImages returns the images uploaded for a session, newest first.
func (s *ImageService) ListImages(ctx context.Context, sessionID string) ([]*models.Image, error) {
	return s.repomanager.Images(s.db).ListBySession(ctx, sessionID)
}
