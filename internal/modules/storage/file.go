// Package storage handles uploads. Files go to S3-compatible object
// storage when configured, to local disk under the static dir otherwise,
// and every stored file gets a tracking row so orphans can be found.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/modules/system"
	"github.com/atrium-events/core/internal/pkg/pagination"
	"github.com/atrium-events/core/internal/pkg/response"
)

// maxUploadSize caps a single upload at 25 MiB.
const maxUploadSize = 25 << 20

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".svg": true, ".pdf": true, ".doc": true, ".docx": true, ".xls": true,
	".xlsx": true, ".csv": true, ".txt": true, ".zip": true,
}

var ErrUnsupportedType = errors.New("unsupported file type")

type Service struct {
	db        *gorm.DB
	settings  *system.Service
	staticDir string
	baseURL   string
	log       *zap.Logger
}

func NewService(db *gorm.DB, settings *system.Service, staticDir, baseURL string, log *zap.Logger) *Service {
	return &Service{db: db, settings: settings, staticDir: staticDir, baseURL: baseURL, log: log}
}

// objectKey builds a collision-free storage key, sharded by month so
// listing a bucket prefix stays manageable.
func objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("uploads/%s/%s%s", time.Now().Format("2006-01"), uuid.New().String(), ext)
}

// Upload stores one file and records a pending reference for it. The
// reference flips to active once something links to the file.
func (s *Service) Upload(ctx context.Context, header *multipart.FileHeader) (*models.FileReferenceModel, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, ErrUnsupportedType
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	key := objectKey(header.Filename)
	cfg := s.settings.Storage()

	var url string
	if cfg.Enable {
		url, err = s.putObject(ctx, cfg, key, src, header.Size, header.Header.Get("Content-Type"))
	} else {
		url, err = s.putLocal(key, src)
	}
	if err != nil {
		return nil, err
	}

	ref := models.FileReferenceModel{
		FileURL:  url,
		FileName: header.Filename,
		Status:   "pending",
	}
	if err := s.db.Create(&ref).Error; err != nil {
		return nil, err
	}
	s.log.Info("file stored", zap.String("url", url), zap.Bool("s3", cfg.Enable))
	return &ref, nil
}

func (s *Service) putLocal(key string, src io.Reader) (string, error) {
	dst := filepath.Join(s.staticDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", err
	}
	return strings.TrimRight(s.baseURL, "/") + "/static/" + key, nil
}

func (s *Service) putObject(ctx context.Context, cfg system.StorageConfig, key string, src io.Reader, size int64, contentType string) (string, error) {
	client := s3Client(cfg)
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put: %w", err)
	}
	if cfg.BaseURL != "" {
		return strings.TrimRight(cfg.BaseURL, "/") + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, key), nil
}

// s3Client is built per call: storage settings are editable at runtime
// and client construction is cheap.
func s3Client(cfg system.StorageConfig) *s3.Client {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
}

// Attach marks stored files as referenced by a record.
func (s *Service) Attach(refID, refType string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	return s.db.Model(&models.FileReferenceModel{}).
		Where("file_url IN ?", urls).
		Updates(map[string]interface{}{"status": "active", "ref_id": refID, "ref_type": refType}).Error
}

func (s *Service) List(q pagination.Query, status string) ([]models.FileReferenceModel, response.Pagination, error) {
	query := s.db.Model(&models.FileReferenceModel{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var refs []models.FileReferenceModel
	p, err := pagination.Paginate(query, q, &refs)
	return refs, p, err
}

// Delete removes the tracking row and, for local files, the file itself.
// Object-storage blobs are left for a bucket lifecycle rule to reap.
func (s *Service) Delete(ctx context.Context, id string) error {
	var ref models.FileReferenceModel
	if err := s.db.Where("id = ?", id).First(&ref).Error; err != nil {
		return err
	}
	prefix := strings.TrimRight(s.baseURL, "/") + "/static/"
	if strings.HasPrefix(ref.FileURL, prefix) {
		local := filepath.Join(s.staticDir, filepath.FromSlash(strings.TrimPrefix(ref.FileURL, prefix)))
		if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
			s.log.Warn("local file removal failed", zap.String("path", local), zap.Error(err))
		}
	} else {
		cfg := s.settings.Storage()
		if cfg.Enable {
			key := strings.TrimPrefix(ref.FileURL, strings.TrimRight(cfg.BaseURL, "/")+"/")
			if _, err := s3Client(cfg).DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(cfg.Bucket),
				Key:    aws.String(path.Clean(key)),
			}); err != nil {
				s.log.Warn("s3 object removal failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return s.db.Delete(&ref).Error
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	files := rg.Group("/files", authMW)
	{
		files.POST("/upload", h.Upload)
		files.POST("/attach", h.Attach)
		files.GET("", h.List)
		files.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "a multipart \"file\" field is required")
		return
	}
	if header.Size > maxUploadSize {
		response.BadRequest(c, "file exceeds the 25 MiB upload limit")
		return
	}
	ref, err := h.service.Upload(c.Request.Context(), header)
	if err != nil {
		if errors.Is(err, ErrUnsupportedType) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, ref)
}

type attachDTO struct {
	RefID   string   `json:"ref_id" binding:"required"`
	RefType string   `json:"ref_type" binding:"required"`
	URLs    []string `json:"urls" binding:"required"`
}

func (h *Handler) Attach(c *gin.Context) {
	var dto attachDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid attach payload")
		return
	}
	if err := h.service.Attach(dto.RefID, dto.RefType, dto.URLs); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) List(c *gin.Context) {
	refs, p, err := h.service.List(pagination.FromContext(c), c.Query("status"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, refs, p)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
