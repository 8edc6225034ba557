package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/pra2107tham/Reeva/configs"
)

// ArchiveService writes raw webhook bodies to R2 so deliveries can be
// audited and replayed. Everything here is best-effort; ingestion never
// waits on the archive beyond its own short timeout.
type ArchiveService interface {
	SavePayload(ctx context.Context, body []byte) error
}

type archiveService struct {
	config cfg.Config
	client *s3.Client
}

func NewArchiveService(config cfg.Config) (ArchiveService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.R2.AccessKey, config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", config.R2.AccountID))
	})

	return &archiveService{config: config, client: client}, nil
}

func (s *archiveService) SavePayload(ctx context.Context, body []byte) error {
	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	key := fmt.Sprintf("webhooks/%s/%s.json", time.Now().UTC().Format("2006-01-02"), id)

	putCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = s.client.PutObject(putCtx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
