package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageService(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		region   string
		endpoint string
		wantErr  bool
	}{
		{
			name:     "valid configuration with endpoint",
			bucket:   "test-bucket",
			region:   "us-east-1",
			endpoint: "http://localhost:4566",
			wantErr:  false,
		},
		{
			name:     "valid configuration without endpoint",
			bucket:   "test-bucket",
			region:   "ap-south-1",
			endpoint: "",
			wantErr:  false,
		},
		{
			name:     "empty bucket",
			bucket:   "",
			region:   "us-east-1",
			endpoint: "http://localhost:4566",
			wantErr:  true,
		},
		{
			name:     "empty region",
			bucket:   "test-bucket",
			region:   "",
			endpoint: "http://localhost:4566",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewStorageService(tt.bucket, tt.region, tt.endpoint)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
				assert.Equal(t, tt.bucket, service.bucket)
				assert.Equal(t, tt.region, service.region)
			}
		})
	}
}

func TestGenerateExportKey(t *testing.T) {
	service := &StorageService{}
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("empty user id rejected", func(t *testing.T) {
		_, err := service.GenerateExportKey("", from, to)
		assert.Error(t, err)
	})

	t.Run("key carries user id and date range", func(t *testing.T) {
		key, err := service.GenerateExportKey("user-123", from, to)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(key, "exports/user-123/"))
		assert.True(t, strings.HasSuffix(key, ".xlsx"))
		assert.Contains(t, key, "20250101")
		assert.Contains(t, key, "20250131")
	})

	t.Run("keys are unique per call", func(t *testing.T) {
		first, err := service.GenerateExportKey("user-123", from, to)
		require.NoError(t, err)
		second, err := service.GenerateExportKey("user-123", from, to)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestStorageServiceGuards(t *testing.T) {
	service := &StorageService{bucket: "test-bucket"}
	ctx := context.Background()

	t.Run("upload requires key", func(t *testing.T) {
		err := service.Upload(ctx, "", "application/octet-stream", strings.NewReader("data"))
		assert.Error(t, err)
	})

	t.Run("upload requires initialized client", func(t *testing.T) {
		err := service.Upload(ctx, "exports/key.xlsx", "", strings.NewReader("data"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not initialized")
	})

	t.Run("presign requires positive expiry", func(t *testing.T) {
		_, err := service.GeneratePresignedGetURL("exports/key.xlsx", 0)
		assert.Error(t, err)
	})

	t.Run("delete requires key", func(t *testing.T) {
		err := service.DeleteFile(ctx, "")
		assert.Error(t, err)
	})
}
