package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/magicboard/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis.
//
// Layout under the key prefix:
//
//	<p>:seq             INCR counter handing out insertion positions
//	<p>:order           ZSET of handle keys scored by insertion position
//	<p>:member:<key>    JSON encoded ActivityRecord
//	<p>:valentines:<key> LIST of JSON notes, newest at the head
//	<p>:notes           SET of saved note IDs
type RedisStore struct {
	client *redis.Client
	addr   string
	db     int
	prefix string
}

// NewRedisStore builds a store. The client connects lazily, so no I/O is done
// here; use Ping to check reachability.
func NewRedisStore(opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		addr:   "localhost:6379",
		prefix: "magicboard",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = redis.NewClient(&redis.Options{Addr: s.addr, DB: s.db})
	}
	return s
}

func (s *RedisStore) seqKey() string                 { return s.prefix + ":seq" }
func (s *RedisStore) orderKey() string               { return s.prefix + ":order" }
func (s *RedisStore) memberKey(key string) string    { return s.prefix + ":member:" + key }
func (s *RedisStore) valentineKey(key string) string { return s.prefix + ":valentines:" + key }
func (s *RedisStore) notesKey() string               { return s.prefix + ":notes" }

func (s *RedisStore) List(ctx context.Context) ([]model.ActivityRecord, error) {
	keys, err := s.client.ZRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out := make([]model.ActivityRecord, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	memberKeys := make([]string, len(keys))
	for i, k := range keys {
		memberKeys[i] = s.memberKey(k)
	}
	vals, err := s.client.MGet(ctx, memberKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Order entry without a body; skip rather than fail the whole list.
			continue
		}
		var rec model.ActivityRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode member %s: %w", keys[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, handle string) (model.ActivityRecord, error) {
	raw, err := s.client.Get(ctx, s.memberKey(handleKey(handle))).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.ActivityRecord{}, fmt.Errorf("%w: %s", ErrNotFound, handle)
	}
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("get member %s: %w", handle, err)
	}
	var rec model.ActivityRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.ActivityRecord{}, fmt.Errorf("decode member %s: %w", handle, err)
	}
	return rec, nil
}

func (s *RedisStore) Upsert(ctx context.Context, rec model.ActivityRecord) error {
	key := handleKey(rec.Handle)
	if key == "" {
		return fmt.Errorf("%w: empty handle", ErrInvalidInput)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode member %s: %w", rec.Handle, err)
	}
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.memberKey(key), body, 0)
		// NX keeps the first insertion position on updates.
		p.ZAddNX(ctx, s.orderKey(), redis.Z{Score: float64(seq), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert member %s: %w", rec.Handle, err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.orderKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) SaveValentine(ctx context.Context, v model.Valentine) error {
	key := handleKey(v.To)
	if key == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidInput)
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode valentine %s: %w", v.NoteID, err)
	}
	added, err := s.client.SAdd(ctx, s.notesKey(), v.NoteID).Result()
	if err != nil {
		return fmt.Errorf("record valentine %s: %w", v.NoteID, err)
	}
	if added == 0 {
		return nil
	}
	if err := s.client.LPush(ctx, s.valentineKey(key), body).Err(); err != nil {
		// Forget the id so a redelivery can try again.
		_ = s.client.SRem(ctx, s.notesKey(), v.NoteID).Err()
		return fmt.Errorf("save valentine %s: %w", v.NoteID, err)
	}
	return nil
}

func (s *RedisStore) Valentines(ctx context.Context, handle string) ([]model.Valentine, error) {
	raws, err := s.client.LRange(ctx, s.valentineKey(handleKey(handle)), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list valentines %s: %w", handle, err)
	}
	out := make([]model.Valentine, 0, len(raws))
	for _, raw := range raws {
		var v model.Valentine
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode valentine: %w", err)
		}
		out = append(out, v)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
