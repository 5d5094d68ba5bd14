package service

import (
	"bytes"
	"context"
	"course_exam_backend/internal/config"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/util"
	"course_exam_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	GetURL(filename string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return filepath.ToSlash(filepath.Join(p.Config.LocalPath, filename))
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(filename, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *OSSStorageProvider) GetURL(filename string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, filename)
}

// ArchiveService 评分完成后把结果快照写入对象存储
type ArchiveService struct {
	Provider StorageProvider
	Results  *ResultService
}

// NewArchiveService storage.type 为 none 或空时返回 nil，表示不归档
func NewArchiveService(cfg *config.Config, results *ResultService) (*ArchiveService, error) {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case "", util.StorageNone:
		return nil, nil
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		provider = p
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("init oss storage: %w", err)
		}
		provider = p
	case util.StorageLocal:
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}

	return &ArchiveService{Provider: provider, Results: results}, nil
}

func ArchiveKey(sub *model.Submission) string {
	return fmt.Sprintf("results/lesson-%d/submission-%d.json", sub.LessonID, sub.ID)
}

// ArchiveSubmission 失败只记录日志，不影响评分结果
func (s *ArchiveService) ArchiveSubmission(ctx context.Context, sub *model.Submission) {
	if _, err := s.Archive(ctx, sub); err != nil {
		logger.Log.Warn("archive submission failed",
			zap.Uint("submission_id", sub.ID),
			zap.Error(err),
		)
	}
}

func (s *ArchiveService) Archive(ctx context.Context, sub *model.Submission) (string, error) {
	full, err := s.Results.Submissions.FindByID(ctx, sub.ID)
	if err != nil {
		return "", err
	}
	result, err := s.Results.Assemble(ctx, full)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(result)
	if err != nil {
		return "", err
	}

	key := ArchiveKey(full)
	url, err := s.Provider.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json")
	if err != nil {
		return "", err
	}
	logger.Log.Debug("submission archived", zap.Uint("submission_id", sub.ID), zap.String("url", url))
	return url, nil
}
