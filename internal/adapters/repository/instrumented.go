package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/magicboard/internal/domain/model"
	"github.com/okian/magicboard/pkg/metrics"
)

// instrumented records latency and failures for every call on the wrapped store.
type instrumented struct {
	next Store
}

// Instrument wraps s so each operation is reported to the metrics package.
func Instrument(s Store) Store {
	if s == nil {
		return nil
	}
	return &instrumented{next: s}
}

func observe(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreOperation(op, float64(time.Since(start).Nanoseconds())/1e6, err)
}

func (s *instrumented) List(ctx context.Context) (out []model.ActivityRecord, err error) {
	defer func(t time.Time) { observe("list", t, err) }(time.Now())
	return s.next.List(ctx)
}

func (s *instrumented) Get(ctx context.Context, handle string) (rec model.ActivityRecord, err error) {
	defer func(t time.Time) { observe("get", t, err) }(time.Now())
	return s.next.Get(ctx, handle)
}

func (s *instrumented) Upsert(ctx context.Context, rec model.ActivityRecord) (err error) {
	defer func(t time.Time) { observe("upsert", t, err) }(time.Now())
	return s.next.Upsert(ctx, rec)
}

func (s *instrumented) Count(ctx context.Context) (n int, err error) {
	defer func(t time.Time) { observe("count", t, err) }(time.Now())
	return s.next.Count(ctx)
}

func (s *instrumented) SaveValentine(ctx context.Context, v model.Valentine) (err error) {
	defer func(t time.Time) { observe("save_valentine", t, err) }(time.Now())
	return s.next.SaveValentine(ctx, v)
}

func (s *instrumented) Valentines(ctx context.Context, handle string) (out []model.Valentine, err error) {
	defer func(t time.Time) { observe("valentines", t, err) }(time.Now())
	return s.next.Valentines(ctx, handle)
}

func (s *instrumented) Ping(ctx context.Context) error { return s.next.Ping(ctx) }
func (s *instrumented) Close() error                   { return s.next.Close() }
