// Package service provides the core business service behind the HTTP API
// and the CLI: it turns a store snapshot into scored, ranked, filtered pages
// and accepts valentine notes for asynchronous delivery.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/okian/magicboard/internal/adapters/mq/queue"
	"github.com/okian/magicboard/internal/adapters/mq/worker"
	"github.com/okian/magicboard/internal/adapters/repository"
	"github.com/okian/magicboard/internal/domain/dedupe"
	"github.com/okian/magicboard/internal/domain/model"
	"github.com/okian/magicboard/internal/domain/ranking"
	"github.com/okian/magicboard/internal/domain/rarity"
	"github.com/okian/magicboard/internal/domain/scoring"
	"github.com/okian/magicboard/internal/domain/types"
	"github.com/okian/magicboard/pkg/logger"
	"github.com/okian/magicboard/pkg/metrics"
)

// MaxMessageRunes bounds the length of a valentine message.
const MaxMessageRunes = 280

const stopTimeout = 30 * time.Second

// Query selects one page of the leaderboard.
type Query struct {
	Sort     string
	Search   string
	Page     int
	PageSize int // 0 selects the default page size
}

// SendRequest is a valentine note as submitted by a client.
type SendRequest struct {
	NoteID  string `json:"note_id,omitempty"` // optional idempotency key
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// Service implements the API dependencies for the leaderboard.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	classifier *rarity.Classifier
	deduper    dedupe.Deduper
	queue      *queue.InMemoryQueue
	pool       *worker.Pool
	cancelRun  context.CancelFunc

	defaultPageSize int
	maxPageSize     int
	workerCount     int
	queueSize       int
	dedupeSize      int

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// New constructs a Service. Without WithStore it uses an empty MemoryStore.
func New(opts ...Option) *Service {
	s := &Service{
		defaultPageSize: 20,
		maxPageSize:     100,
		workerCount:     runtime.NumCPU(),
		queueSize:       10_000,
		dedupeSize:      50_000,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.classifier == nil {
		s.classifier = rarity.NewClassifier()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start launches the delivery pipeline. Leaderboard reads work without it.
// Cancelling ctx does not stop delivery; call Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	deduper := s.deduper
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store,
		worker.WithFailureHandler(func(ctx context.Context, n worker.Note, _ error) {
			// Let the client retry with the same note ID.
			deduper.Unrecord(ctx, n.NoteID)
		}),
	)
	// Workers outlive the caller's context; only Stop ends them, after the
	// queue has drained.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains queued notes and stops the workers. The store stays open.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping service")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancelRun()
	s.started = false
	s.logger.Info(ctx, "service stopped")
}

// Leaderboard scores the full snapshot, ranks it by q.Sort, applies the
// search filter and returns the requested page.
func (s *Service) Leaderboard(ctx context.Context, q Query) (types.LeaderboardPage, error) {
	start := time.Now()

	key, err := ranking.ParseSortKey(q.Sort)
	if err != nil {
		return types.LeaderboardPage{}, err
	}
	pageSize, err := s.pageSize(q.PageSize)
	if err != nil {
		return types.LeaderboardPage{}, err
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return types.LeaderboardPage{}, fmt.Errorf("load snapshot: %w", err)
	}

	ranked := ranking.Rank(scoring.ComputeScores(records), key)
	filtered := ranking.Filter(ranked, q.Search)
	totalPages := ranking.TotalPages(len(filtered), pageSize)
	page := ranking.ClampPage(q.Page, totalPages)
	rows := ranking.Paginate(filtered, page, pageSize)

	entries := make([]types.Entry, 0, len(rows))
	for i := range rows {
		entries = append(entries, s.entry(&rows[i]))
	}

	metrics.RecordLeaderboardComputation(string(key), float64(time.Since(start).Nanoseconds())/1e6)
	metrics.UpdateMembersTotal(len(records))
	s.logger.Debug(ctx, "leaderboard computed",
		logger.String("sort", string(key)),
		logger.Int("members", len(records)),
		logger.Int("matches", len(filtered)),
		logger.Int("page", page),
	)

	return types.LeaderboardPage{
		Sort:       string(key),
		Query:      strings.TrimSpace(q.Search),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: len(filtered),
		Entries:    entries,
	}, nil
}

func (s *Service) pageSize(requested int) (int, error) {
	switch {
	case requested == 0:
		return s.defaultPageSize, nil
	case requested < 0:
		return 0, fmt.Errorf("%w: page_size must be positive", ErrInvalidQuery)
	case requested > s.maxPageSize:
		return 0, fmt.Errorf("%w: %d > %d", ErrPageSizeExceeded, requested, s.maxPageSize)
	default:
		return requested, nil
	}
}

// MaxPageSize returns the configured page size cap.
func (s *Service) MaxPageSize() int { return s.maxPageSize }

// Member builds the profile card for handle. The score is computed against
// the normalization context of the whole current batch, so it matches the
// member's leaderboard score.
func (s *Service) Member(ctx context.Context, handle string) (types.Card, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		metrics.RecordMemberLookup("error")
		return types.Card{}, fmt.Errorf("load snapshot: %w", err)
	}

	var (
		rec   model.ActivityRecord
		found bool
	)
	handle = strings.TrimSpace(handle)
	for i := range records {
		if handle != "" && records[i].MatchesHandle(handle) {
			rec, found = records[i], true
			break
		}
	}
	if !found {
		metrics.RecordMemberLookup("not_found")
		return types.Card{}, fmt.Errorf("%w: %s", repository.ErrNotFound, handle)
	}

	nctx := scoring.NewNormalizationContext(records)
	scored := scoring.ComputeSingleScore(rec, &nctx)

	rank := 0
	for _, r := range ranking.Rank(scoring.ComputeScores(records), ranking.SortByScore) {
		if r.MatchesHandle(rec.Handle) {
			rank = r.StableRank
			break
		}
	}

	metrics.RecordMemberLookup("found")
	card := types.Card{
		Entry:        s.entry(&model.RankedRecord{ScoredRecord: scored, StableRank: rank}),
		TotalMembers: len(records),
	}
	if rank > 0 && len(records) > 0 {
		card.Percentile = scoring.RoundTenth(100 * float64(rank) / float64(len(records)))
	}
	return card, nil
}

func (s *Service) entry(r *model.RankedRecord) types.Entry {
	res := s.classifier.Classify(r.MagicianScore, r.Roles(), r.Handle)
	return types.Entry{
		Rank:          r.StableRank,
		Handle:        r.Handle,
		DisplayName:   r.DisplayName,
		AvatarURL:     r.AvatarURL,
		RoleTags:      r.RoleTags,
		MagicianScore: r.MagicianScore,
		PostsCount:    r.PostsCount,
		LikesTotal:    r.LikesTotal,
		RepliesTotal:  r.RepliesTotal,
		RetweetsTotal: r.RetweetsTotal,
		QuotesTotal:   r.QuotesTotal,
		ViewsTotal:    r.ViewsTotal,
		Tier:          res.Tier,
		Style:         res.Style,
	}
}

// UpsertMember validates and stores a member's activity counts.
func (s *Service) UpsertMember(ctx context.Context, rec model.ActivityRecord) error { //nolint:gocritic // hugeParam: record is a value type
	rec.Handle = strings.TrimSpace(rec.Handle)
	if rec.Handle == "" {
		return fmt.Errorf("%w: handle is required", ErrInvalidMember)
	}
	counts := []int64{rec.PostsCount, rec.LikesTotal, rec.RepliesTotal, rec.RetweetsTotal, rec.QuotesTotal, rec.ViewsTotal}
	for _, c := range counts {
		if c < 0 {
			return fmt.Errorf("%w: counts must not be negative", ErrInvalidMember)
		}
	}
	if err := s.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

// SendValentine validates a note and queues it for delivery. A repeated
// NoteID is reported as a duplicate and not queued again.
func (s *Service) SendValentine(ctx context.Context, req SendRequest) (model.Valentine, bool, error) {
	s.mu.RLock()
	started, q, d := s.started, s.queue, s.deduper
	s.mu.RUnlock()
	if !started {
		return model.Valentine{}, false, ErrNotStarted
	}

	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	req.Message = strings.TrimSpace(req.Message)
	switch n := utf8.RuneCountInString(req.Message); {
	case req.From == "" || req.To == "":
		return model.Valentine{}, false, fmt.Errorf("%w: from and to are required", ErrInvalidValentine)
	case strings.EqualFold(req.From, req.To):
		return model.Valentine{}, false, fmt.Errorf("%w: cannot send a note to yourself", ErrInvalidValentine)
	case n == 0:
		return model.Valentine{}, false, fmt.Errorf("%w: message is required", ErrInvalidValentine)
	case n > MaxMessageRunes:
		return model.Valentine{}, false, fmt.Errorf("%w: message longer than %d characters", ErrInvalidValentine, MaxMessageRunes)
	}

	from, err := s.store.Get(ctx, req.From)
	if err != nil {
		return model.Valentine{}, false, fmt.Errorf("sender: %w", err)
	}
	to, err := s.store.Get(ctx, req.To)
	if err != nil {
		return model.Valentine{}, false, fmt.Errorf("recipient: %w", err)
	}

	note := model.Valentine{
		NoteID:  strings.TrimSpace(req.NoteID),
		From:    from.Handle,
		To:      to.Handle,
		Message: req.Message,
		SentAt:  s.now().UTC(),
	}
	if note.NoteID == "" {
		note.NoteID = uuid.NewString()
	}

	if d.SeenAndRecord(ctx, note.NoteID) {
		metrics.RecordValentineDuplicate()
		s.logger.Debug(ctx, "duplicate note", logger.String("note_id", note.NoteID))
		return note, true, nil
	}

	if err := q.Enqueue(ctx, note); err != nil {
		d.Unrecord(ctx, note.NoteID)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return model.Valentine{}, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return model.Valentine{}, false, err
	}

	metrics.RecordValentineSent()
	return note, false, nil
}

// Valentines returns the notes delivered to handle, newest first.
func (s *Service) Valentines(ctx context.Context, handle string) ([]model.Valentine, error) {
	rec, err := s.store.Get(ctx, handle)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.Valentines(ctx, rec.Handle)
	if err != nil {
		return nil, fmt.Errorf("load valentines: %w", err)
	}
	return notes, nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"maxPageSize":     s.maxPageSize,
		"defaultPageSize": s.defaultPageSize,
	}

	if n, err := s.store.Count(ctx); err == nil {
		stats["totalMembers"] = n
		metrics.UpdateMembersTotal(n)
	}
	if s.started {
		queueLen := s.queue.Len()
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
