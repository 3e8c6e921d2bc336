package safety

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Platform() string { return "aws" }

func (m *MockProvider) SupportedResources() []domain.ResourceType {
	return []domain.ResourceType{domain.ResourceBlockVolume}
}

func (m *MockProvider) ListResources(ctx context.Context, t domain.ResourceType) ([]domain.Snapshot, error) {
	args := m.Called(ctx, t)
	return args.Get(0).([]domain.Snapshot), args.Error(1)
}

func (m *MockProvider) ApplyAction(ctx context.Context, action domain.Action) (domain.ApplyResult, error) {
	args := m.Called(ctx, action)
	return args.Get(0).(domain.ApplyResult), args.Error(1)
}

func (m *MockProvider) CreateBackup(ctx context.Context, action domain.Action) (domain.BackupRef, error) {
	args := m.Called(ctx, action)
	return args.Get(0).(domain.BackupRef), args.Error(1)
}

func testRegistry(t *testing.T, p provider.Provider) provider.Registry {
	t.Helper()
	registry := provider.NewRegistry("")
	err := registry.Register("aws", func(context.Context, string) (provider.Provider, error) {
		return p, nil
	})
	require.NoError(t, err)
	return registry
}

func testCtx() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func TestBackupSnapshotPassthrough(t *testing.T) {
	mockProvider := new(MockProvider)
	mockProvider.On("CreateBackup", mock.Anything, mock.Anything).Return(domain.BackupRef{
		ID:       "snap-0abc",
		Kind:     "snapshot",
		Location: "ec2:us-east-1:snapshot/snap-0abc",
	}, nil)

	manager := NewManager(testRegistry(t, mockProvider), t.TempDir())

	action := domain.Action{
		Kind:         domain.RecommendDelete,
		ResourceType: domain.ResourceBlockVolume,
		ResourceID:   "vol-1",
		Platform:     "aws",
	}

	ref, err := manager.Backup(testCtx(), action)
	require.NoError(t, err)
	assert.Equal(t, "snap-0abc", ref.ID)
	assert.Equal(t, "ec2:us-east-1:snapshot/snap-0abc", ref.Location)
}

func TestBackupPersistsDescriptionArtifact(t *testing.T) {
	artifact := []byte(`{"InstanceType":"m5.xlarge","State":"running"}`)
	mockProvider := new(MockProvider)
	mockProvider.On("CreateBackup", mock.Anything, mock.Anything).Return(domain.BackupRef{
		ID:       "i-0abc",
		Kind:     "description",
		Artifact: artifact,
	}, nil)

	dir := t.TempDir()
	manager := NewManager(testRegistry(t, mockProvider), dir)

	action := domain.Action{
		Kind:         domain.RecommendTerminate,
		ResourceType: domain.ResourceCompute,
		ResourceID:   "i-0abc",
		Platform:     "aws",
	}

	ref, err := manager.Backup(testCtx(), action)
	require.NoError(t, err)
	require.NotEmpty(t, ref.Location)
	assert.Equal(t, dir, filepath.Dir(ref.Location))

	data, err := os.ReadFile(ref.Location)
	require.NoError(t, err)
	assert.Equal(t, artifact, data)
}

func TestBackupProviderErrorWrapped(t *testing.T) {
	mockProvider := new(MockProvider)
	mockProvider.On("CreateBackup", mock.Anything, mock.Anything).
		Return(domain.BackupRef{}, errors.New("snapshot quota exceeded"))

	manager := NewManager(testRegistry(t, mockProvider), t.TempDir())

	_, err := manager.Backup(testCtx(), domain.Action{
		Kind:         domain.RecommendDelete,
		ResourceType: domain.ResourceBlockVolume,
		ResourceID:   "vol-1",
		Platform:     "aws",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackupFailed)
	assert.Contains(t, err.Error(), "snapshot quota exceeded")
}

func TestBackupUnknownPlatformFails(t *testing.T) {
	manager := NewManager(provider.NewRegistry(""), t.TempDir())

	_, err := manager.Backup(testCtx(), domain.Action{
		Kind:       domain.RecommendDrop,
		ResourceID: "WH_A",
		Platform:   "snowflake",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackupFailed)
}
