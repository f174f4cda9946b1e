// Package archive uploads point-in-time task snapshots to S3-compatible
// object storage and hands back presigned download links.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
	"github.com/google/uuid"
)

// LinkValidity is how long a snapshot download link stays usable.
const LinkValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// Snapshot is the document written for one account.
type Snapshot struct {
	Username   string           `json:"username"`
	TakenAt    time.Time        `json:"takenAt"`
	Completion tasks.Completion `json:"completion"`
	Tasks      []tasks.Task     `json:"tasks"`
}

// Result locates an uploaded snapshot.
type Result struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Archiver writes snapshots to the configured bucket.
type Archiver struct {
	config *sc.Config
}

func NewArchiver(config *sc.Config) *Archiver {
	return &Archiver{config: config}
}

// StorageKey returns snapshots/<username>/<yyyy>/<mm>/<dd>/<uuid>.json for t.
func StorageKey(username string, t time.Time) string {
	return fmt.Sprintf("snapshots/%s/%04d/%02d/%02d/%s.json", username, t.Year(), t.Month(), t.Day(), uuid.New())
}

func (a *Archiver) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(a.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.config.S3RootUser,
			a.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(a.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Snapshot uploads the completion summary and task list of username and
// returns a presigned GET link valid for LinkValidity.
func (a *Archiver) Snapshot(ctx context.Context, username string, list []tasks.Task) (*Result, error) {
	client, err := a.getClient(ctx)
	if err != nil {
		return nil, err
	}

	takenAt := now().UTC()
	body, err := json.Marshal(Snapshot{
		Username:   username,
		TakenAt:    takenAt,
		Completion: tasks.Summarize(list),
		Tasks:      tasks.Clone(list),
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	bucket := a.config.S3Bucket
	key := StorageKey(username, takenAt)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(LinkValidity))
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}

	return &Result{Key: key, URL: req.URL, ExpiresAt: takenAt.Add(LinkValidity)}, nil
}
