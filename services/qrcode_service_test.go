package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G'}

func TestQRCodeIssueAndFetch(t *testing.T) {
	storage := newFakeStorage()
	svc := NewQRCodeService(storage, newTestConfig())

	ref, err := svc.Issue("482915")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, err := svc.Fetch(ref)
	require.NoError(t, err)
	assert.Equal(t, pngSignature, data[:4])
}

func TestQRCodeRefsAreUnique(t *testing.T) {
	storage := newFakeStorage()
	svc := NewQRCodeService(storage, newTestConfig())

	first, err := svc.Issue("482915")
	require.NoError(t, err)
	second, err := svc.Issue("482915")
	require.NoError(t, err)
	// 同一编码重复签发也各有独立制品引用
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, storage.Len())
}

func TestQRCodeInvalidate(t *testing.T) {
	storage := newFakeStorage()
	svc := NewQRCodeService(storage, newTestConfig())

	ref, err := svc.Issue("482915")
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ref))
	assert.False(t, storage.Has(ref))

	_, err = svc.Fetch(ref)
	require.ErrorIs(t, err, ErrArtifactNotFound)

	// 幂等：重复作废和空引用都不报错
	require.NoError(t, svc.Invalidate(ref))
	require.NoError(t, svc.Invalidate(""))
}

func TestQRCodeIssueFailure(t *testing.T) {
	svc := NewQRCodeService(failingStorage{}, newTestConfig())

	_, err := svc.Issue("482915")
	require.ErrorIs(t, err, ErrCredentialIssuance)
}
