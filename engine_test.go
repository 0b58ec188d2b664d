package hypograph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	t.Run("create new engine", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		engine, err := NewEngine(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, engine)
		defer engine.Close(context.Background())

		assert.NotNil(t, engine.Assembler())
		assert.NotNil(t, engine.Retriever())
		assert.NotNil(t, engine.Indexer())
		assert.NotNil(t, engine.Papers())
		assert.NotNil(t, engine.Graph())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		engine, err := NewEngine(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, engine)
	})
}

func TestEngine_Close(t *testing.T) {
	engine, err := NewEngine(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, engine)

	assert.NoError(t, engine.Close(context.Background()))
}

func TestEngine_FactoryMethods(t *testing.T) {
	engine, err := NewEngine(t.TempDir())
	require.NoError(t, err)
	defer engine.Close(context.Background())

	t.Run("can create importer", func(t *testing.T) {
		importer, err := engine.NewImporter()
		require.NoError(t, err)
		require.NotNil(t, importer)
	})

	t.Run("can create server", func(t *testing.T) {
		srv, err := engine.NewServer()
		require.NoError(t, err)
		require.NotNil(t, srv)
	})
}
