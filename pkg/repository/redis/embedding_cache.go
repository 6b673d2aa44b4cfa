package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/artem13815/freelance/pkg/embedding"
	"github.com/artem13815/freelance/pkg/logger"
)

const (
	fieldVector    = "v"
	fieldHash      = "h"
	fieldUpdatedAt = "t"
)

// EmbeddingCache is a write-through cache in front of a durable embedding.Store.
// Redis failures are logged and never fail a request; the durable store is the source of truth.
type EmbeddingCache struct {
	rdb  goredis.Cmdable
	next embedding.Store
	ttl  time.Duration
	log  *zap.Logger
}

func NewEmbeddingCache(rdb goredis.Cmdable, next embedding.Store, ttl time.Duration, log *zap.Logger) *EmbeddingCache {
	return &EmbeddingCache{rdb: rdb, next: next, ttl: ttl, log: logger.OrNop(log)}
}

func cacheKey(kind embedding.Kind, id uuid.UUID) string {
	return "embedding:" + string(kind) + ":" + id.String()
}

func (c *EmbeddingCache) Get(ctx context.Context, kind embedding.Kind, id uuid.UUID) (embedding.Record, error) {
	key := cacheKey(kind, id)
	fields, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		c.log.Warn("embedding cache read failed", zap.String("key", key), zap.Error(err))
	} else if rec, ok := decodeRecord(kind, id, fields); ok {
		return rec, nil
	}

	rec, err := c.next.Get(ctx, kind, id)
	if err != nil {
		return embedding.Record{}, err
	}
	if len(rec.Vector) > 0 {
		c.put(ctx, rec)
	}
	return rec, nil
}

func (c *EmbeddingCache) Save(ctx context.Context, rec embedding.Record) error {
	if err := c.next.Save(ctx, rec); err != nil {
		return err
	}
	c.put(ctx, rec)
	return nil
}

func (c *EmbeddingCache) put(ctx context.Context, rec embedding.Record) {
	key := cacheKey(rec.Kind, rec.EntityID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldVector, EncodeVector(rec.Vector),
			fieldHash, rec.ContentHash,
			fieldUpdatedAt, strconv.FormatInt(rec.UpdatedAt.UnixNano(), 10),
		)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.log.Warn("embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func decodeRecord(kind embedding.Kind, id uuid.UUID, fields map[string]string) (embedding.Record, bool) {
	raw, ok := fields[fieldVector]
	if !ok {
		return embedding.Record{}, false
	}
	vec, err := DecodeVector([]byte(raw))
	if err != nil || len(vec) == 0 {
		return embedding.Record{}, false
	}
	rec := embedding.Record{EntityID: id, Kind: kind, Vector: vec, ContentHash: fields[fieldHash]}
	if ns, err := strconv.ParseInt(fields[fieldUpdatedAt], 10, 64); err == nil {
		rec.UpdatedAt = time.Unix(0, ns).UTC()
	}
	return rec, true
}

// EncodeVector packs v as little-endian float32 values.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

var errCorruptVector = errors.New("corrupt cached vector")

func DecodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", errCorruptVector, len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
