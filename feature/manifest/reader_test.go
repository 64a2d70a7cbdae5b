package manifest

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"dbt-metabase/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadModels(t *testing.T) {
	ctx := context.Background()

	t.Run("LocalFile", func(t *testing.T) {
		reader := NewReader("testdata/manifest.json", nil, zap.NewNop())
		models, err := reader.ReadModels(ctx)
		require.NoError(t, err)
		assert.Len(t, models, 5)
	})

	t.Run("MissingFile", func(t *testing.T) {
		reader := NewReader("testdata/missing.json", nil, zap.NewNop())
		_, err := reader.ReadModels(ctx)
		assert.Error(t, err)
	})

	t.Run("ObjectStorage", func(t *testing.T) {
		f, err := os.Open("testdata/manifest.json")
		require.NoError(t, err)

		store := new(mocks.Client)
		store.On("GetObject", mock.Anything, "artifacts", "jaffle_shop/manifest.json", mock.Anything).Return(io.ReadCloser(f), nil)

		reader := NewReader("s3://artifacts/jaffle_shop/manifest.json", store, zap.NewNop())
		models, err := reader.ReadModels(ctx)
		require.NoError(t, err)
		assert.Len(t, models, 5)
		store.AssertExpectations(t)
	})

	t.Run("ObjectStorageError", func(t *testing.T) {
		store := new(mocks.Client)
		store.On("GetObject", mock.Anything, "artifacts", "manifest.json", mock.Anything).Return(nil, errors.New("access denied"))

		reader := NewReader("s3://artifacts/manifest.json", store, zap.NewNop())
		_, err := reader.ReadModels(ctx)
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("ObjectStorageWithoutClient", func(t *testing.T) {
		reader := NewReader("s3://artifacts/manifest.json", nil, zap.NewNop())
		_, err := reader.ReadModels(ctx)
		assert.Error(t, err)
	})
}
