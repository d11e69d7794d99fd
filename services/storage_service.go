package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Truinfo/LivInSync/config"
)

// ErrArtifactNotFound 表示制品不存在或已被清理
var ErrArtifactNotFound = errors.New("制品不存在")

// InterfaceStorageService 定义制品存储接口（凭证二维码等二进制制品）
type InterfaceStorageService interface {
	Put(ref string, data []byte) error
	Get(ref string) ([]byte, error)
	Delete(ref string) error
}

// StorageService handles binary artifact storage backed by Redis
type StorageService struct {
	Client *redis.Client
	Ctx    context.Context
	TTL    time.Duration
}

const artifactKeyPrefix = "artifact:"

// NewStorageService creates a new artifact storage service
func NewStorageService(cfg *config.Config) *StorageService {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	return &StorageService{
		Client: client,
		Ctx:    context.Background(),
		TTL:    cfg.GetCredentialTTL(),
	}
}

// NewStorageServiceWithClient creates an artifact storage service on an existing client
func NewStorageServiceWithClient(client *redis.Client, ttl time.Duration) *StorageService {
	return &StorageService{
		Client: client,
		Ctx:    context.Background(),
		TTL:    ttl,
	}
}

// Put stores an artifact under the given ref.
// TTL是保底清理：凭证的逻辑失效始终由显式Delete完成。
func (s *StorageService) Put(ref string, data []byte) error {
	return s.Client.Set(s.Ctx, artifactKeyPrefix+ref, data, s.TTL).Err()
}

// Get retrieves an artifact by ref
func (s *StorageService) Get(ref string) ([]byte, error) {
	val, err := s.Client.Get(s.Ctx, artifactKeyPrefix+ref).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrArtifactNotFound
		}
		return nil, err
	}
	return val, nil
}

// Delete removes an artifact by ref. Deleting a missing artifact is not an error.
func (s *StorageService) Delete(ref string) error {
	return s.Client.Del(s.Ctx, artifactKeyPrefix+ref).Err()
}
