package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Truinfo/LivInSync/config"
	"github.com/Truinfo/LivInSync/models"
)

// newTestDB 打开一个内存sqlite库并迁移所有模型
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库只允许单连接，新连接看到的是另一个空库
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Admin{},
		&models.Visitor{},
		&models.VisitorCode{},
		&models.Notification{},
	))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		VisitorCodeLength:      6,
		VisitorCodeMaxAttempts: 5,
		CredentialTTLHours:     168,
	}
}

// fakeStorage 内存制品存储
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Put(ref string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[ref] = data
	return nil
}

func (f *fakeStorage) Get(ref string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[ref]
	if !ok {
		return nil, ErrArtifactNotFound
	}
	return data, nil
}

func (f *fakeStorage) Delete(ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, ref)
	return nil
}

func (f *fakeStorage) Has(ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[ref]
	return ok
}

func (f *fakeStorage) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// failingStorage 写入始终失败，用于凭证签发失败路径
type failingStorage struct{}

func (failingStorage) Put(string, []byte) error { return errors.New("storage unavailable") }
func (failingStorage) Get(string) ([]byte, error) {
	return nil, errors.New("storage unavailable")
}
func (failingStorage) Delete(string) error { return errors.New("storage unavailable") }

// fakeNotifier 同步记录事件，便于断言
type fakeNotifier struct {
	mu     sync.Mutex
	events []VisitorEvent
}

func (f *fakeNotifier) Connect() error { return nil }
func (f *fakeNotifier) Disconnect()    {}

func (f *fakeNotifier) PublishVisitorEvent(event VisitorEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) Events() []VisitorEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]VisitorEvent, len(f.events))
	copy(out, f.events)
	return out
}
