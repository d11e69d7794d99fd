package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Truinfo/LivInSync/models"
)

func TestAllocateDistinctCodes(t *testing.T) {
	db := newTestDB(t)
	allocator := NewCodeAllocator(db, newTestConfig())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := allocator.Allocate("soc-1")
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.False(t, seen[code], "code %s allocated twice", code)
		seen[code] = true
	}
}

func TestAllocateScopedBySociety(t *testing.T) {
	db := newTestDB(t)
	// 单位编码空间，占满soc-1后soc-2仍可分配任意编码
	cfg := newTestConfig()
	cfg.VisitorCodeLength = 1
	allocator := NewCodeAllocator(db, cfg)

	for d := 0; d < 10; d++ {
		require.NoError(t, db.Create(&models.VisitorCode{
			SocietyID: "soc-1", Code: fmt.Sprintf("%d", d),
		}).Error)
	}

	code, err := allocator.Allocate("soc-2")
	require.NoError(t, err)
	assert.Len(t, code, 1)
}

func TestAllocateExhausted(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.VisitorCodeLength = 1
	allocator := NewCodeAllocator(db, cfg)

	// 占满全部10个单位编码
	for d := 0; d < 10; d++ {
		require.NoError(t, db.Create(&models.VisitorCode{
			SocietyID: "soc-1", Code: fmt.Sprintf("%d", d),
		}).Error)
	}

	_, err := allocator.Allocate("soc-1")
	require.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestReleaseMakesCodeReallocatable(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.VisitorCodeLength = 1
	// 只剩一个空位时需要足够多的重试才能随机命中
	cfg.VisitorCodeMaxAttempts = 500
	allocator := NewCodeAllocator(db, cfg)

	// 留下"7"这一个空位
	for d := 0; d < 10; d++ {
		if d == 7 {
			continue
		}
		require.NoError(t, db.Create(&models.VisitorCode{
			SocietyID: "soc-1", Code: fmt.Sprintf("%d", d),
		}).Error)
	}

	code, err := allocator.Allocate("soc-1")
	require.NoError(t, err)
	assert.Equal(t, "7", code)

	require.NoError(t, allocator.Release(db, "soc-1", code))

	again, err := allocator.Allocate("soc-1")
	require.NoError(t, err)
	assert.Equal(t, "7", again)
}

func TestReleaseIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	allocator := NewCodeAllocator(db, newTestConfig())

	code, err := allocator.Allocate("soc-1")
	require.NoError(t, err)

	require.NoError(t, allocator.Release(db, "soc-1", code))
	require.NoError(t, allocator.Release(db, "soc-1", code))
}
