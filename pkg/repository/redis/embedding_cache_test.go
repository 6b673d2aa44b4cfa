package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/artem13815/freelance/pkg/embedding"
)

type memStore struct {
	records map[uuid.UUID]embedding.Record
	saveErr error
}

func (m *memStore) Get(ctx context.Context, kind embedding.Kind, id uuid.UUID) (embedding.Record, error) {
	if rec, ok := m.records[id]; ok {
		return rec, nil
	}
	return embedding.Record{EntityID: id, Kind: kind}, nil
}

func (m *memStore) Save(ctx context.Context, rec embedding.Record) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[rec.EntityID] = rec
	return nil
}

// unreachable returns a client whose every command fails fast.
func unreachable(t *testing.T) *goredis.Client {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	out, err := DecodeVector(EncodeVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	empty, err := DecodeVector(EncodeVector(nil))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = DecodeVector([]byte{1, 2, 3})
	require.ErrorIs(t, err, errCorruptVector)
}

func TestDecodeRecord(t *testing.T) {
	id := uuid.New()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	rec, ok := decodeRecord(embedding.KindProject, id, map[string]string{
		fieldVector:    string(EncodeVector([]float32{1, 2})),
		fieldHash:      "abc",
		fieldUpdatedAt: "1746093600000000000",
	})
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, rec.Vector)
	assert.Equal(t, "abc", rec.ContentHash)
	assert.Equal(t, now, rec.UpdatedAt)

	_, ok = decodeRecord(embedding.KindProject, id, map[string]string{})
	assert.False(t, ok)
	_, ok = decodeRecord(embedding.KindProject, id, map[string]string{fieldVector: ""})
	assert.False(t, ok)
}

func TestCacheFallsBackWhenRedisIsDown(t *testing.T) {
	id := uuid.New()
	next := &memStore{records: map[uuid.UUID]embedding.Record{
		id: {EntityID: id, Kind: embedding.KindFreelancer, Vector: []float32{0.5}},
	}}
	core, observed := observer.New(zapcore.WarnLevel)
	cache := NewEmbeddingCache(unreachable(t), next, time.Hour, zap.New(core))

	rec, err := cache.Get(context.Background(), embedding.KindFreelancer, id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, rec.Vector)

	other := uuid.New()
	err = cache.Save(context.Background(), embedding.Record{EntityID: other, Kind: embedding.KindProject, Vector: []float32{1}})
	require.NoError(t, err)
	assert.Contains(t, next.records, other)

	assert.NotEmpty(t, observed.FilterMessage("embedding cache read failed").All())
	assert.NotEmpty(t, observed.FilterMessage("embedding cache write failed").All())
}

func TestCacheSavePropagatesStoreError(t *testing.T) {
	next := &memStore{records: map[uuid.UUID]embedding.Record{}, saveErr: errors.New("db down")}
	cache := NewEmbeddingCache(unreachable(t), next, 0, nil)

	err := cache.Save(context.Background(), embedding.Record{EntityID: uuid.New(), Kind: embedding.KindProject, Vector: []float32{1}})
	require.EqualError(t, err, "db down")
}
