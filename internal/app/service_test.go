package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	service "github.com/okian/magicboard/internal/app"
	"github.com/okian/magicboard/internal/adapters/repository"
	"github.com/okian/magicboard/internal/domain/model"
	"github.com/okian/magicboard/internal/domain/ranking"
	"github.com/okian/magicboard/internal/domain/rarity"
	"github.com/okian/magicboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func seededStore() *repository.MemoryStore {
	s := repository.NewMemoryStore()
	ctx := context.Background()
	for _, r := range []model.ActivityRecord{
		{Handle: "alice", DisplayName: "Alice the Amazing", ViewsTotal: 10000, LikesTotal: 500, RepliesTotal: 50, PostsCount: 10},
		{Handle: "bob", DisplayName: "Bob", ViewsTotal: 1000, LikesTotal: 50, RepliesTotal: 5, PostsCount: 2},
		{Handle: "carol", DisplayName: "Carol", RoleTags: "Artist"},
	} {
		if err := s.Upsert(ctx, r); err != nil {
			panic(err)
		}
	}
	return s
}

func entryHandles(svc *service.Service, q service.Query) []string {
	page, err := svc.Leaderboard(context.Background(), q)
	So(err, ShouldBeNil)
	out := make([]string, 0, len(page.Entries))
	for _, e := range page.Entries {
		out = append(out, e.Handle)
	}
	return out
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should start empty and stopped", func() {
			So(svc, ShouldNotBeNil)
			So(svc.MaxPageSize(), ShouldEqual, 100)
			stats := svc.GetStats(context.Background())
			So(stats["started"], ShouldEqual, false)
			So(stats["totalMembers"], ShouldEqual, 0)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(50),
			service.WithDedupeSize(25),
			service.WithPageSizes(5, 10),
		)

		Convey("Then the options should be applied", func() {
			stats := svc.GetStats(context.Background())
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 50)
			So(svc.MaxPageSize(), ShouldEqual, 10)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		defer svc.Stop()

		Convey("When starting the service", func() {
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then it should be marked as started", func() {
				stats := svc.GetStats(context.Background())
				So(stats["started"], ShouldEqual, true)
				So(stats["queueLength"], ShouldEqual, 0)
			})

			Convey("Then starting again should be a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})

			Convey("And stopping it", func() {
				svc.Stop()

				Convey("Then it should be marked as stopped", func() {
					So(svc.GetStats(context.Background())["started"], ShouldEqual, false)
				})
			})
		})
	})
}

func TestService_Leaderboard(t *testing.T) {
	Convey("Given a service over the three member batch", t, func() {
		svc := service.New(service.WithStore(seededStore()))
		ctx := context.Background()

		Convey("When the default leaderboard is requested", func() {
			page, err := svc.Leaderboard(ctx, service.Query{})

			Convey("Then members are ranked by score with tiers attached", func() {
				So(err, ShouldBeNil)
				So(page.Sort, ShouldEqual, "score")
				So(page.Page, ShouldEqual, 1)
				So(page.PageSize, ShouldEqual, 20)
				So(page.TotalPages, ShouldEqual, 1)
				So(page.TotalCount, ShouldEqual, 3)
				So(page.Entries, ShouldHaveLength, 3)

				So(page.Entries[0].Handle, ShouldEqual, "alice")
				So(page.Entries[0].Rank, ShouldEqual, 1)
				So(page.Entries[0].MagicianScore, ShouldEqual, 100.0)
				So(page.Entries[0].Tier, ShouldEqual, rarity.TierMythical)

				So(page.Entries[1].Handle, ShouldEqual, "bob")
				So(page.Entries[1].MagicianScore, ShouldEqual, 58.9)
				So(page.Entries[1].Tier, ShouldEqual, rarity.TierRare)

				So(page.Entries[2].Handle, ShouldEqual, "carol")
				So(page.Entries[2].MagicianScore, ShouldEqual, 0.0)
				So(page.Entries[2].Tier, ShouldEqual, rarity.TierCommon)
				So(page.Entries[2].Style, ShouldResemble, rarity.StyleFor(rarity.TierCommon))
			})
		})

		Convey("When sorting by posts", func() {
			So(entryHandles(svc, service.Query{Sort: "POSTS"}), ShouldResemble, []string{"alice", "bob", "carol"})
		})

		Convey("When paging two at a time", func() {
			page, err := svc.Leaderboard(ctx, service.Query{Page: 2, PageSize: 2})

			Convey("Then the second page holds the remainder with its global rank", func() {
				So(err, ShouldBeNil)
				So(page.TotalPages, ShouldEqual, 2)
				So(page.Entries, ShouldHaveLength, 1)
				So(page.Entries[0].Handle, ShouldEqual, "carol")
				So(page.Entries[0].Rank, ShouldEqual, 3)
			})
		})

		Convey("When the page is past the end", func() {
			page, err := svc.Leaderboard(ctx, service.Query{Page: 99, PageSize: 2})

			Convey("Then it is clamped to the last page", func() {
				So(err, ShouldBeNil)
				So(page.Page, ShouldEqual, 2)
			})
		})

		Convey("When searching", func() {
			page, err := svc.Leaderboard(ctx, service.Query{Search: "  AMAZ "})

			Convey("Then only matches are returned with their global ranks", func() {
				So(err, ShouldBeNil)
				So(page.Query, ShouldEqual, "AMAZ")
				So(page.TotalCount, ShouldEqual, 1)
				So(page.Entries[0].Handle, ShouldEqual, "alice")
				So(page.Entries[0].Rank, ShouldEqual, 1)
			})

			Convey("Then a search for the lowest ranked member keeps rank 3", func() {
				page, err := svc.Leaderboard(ctx, service.Query{Search: "car"})
				So(err, ShouldBeNil)
				So(page.Entries[0].Rank, ShouldEqual, 3)
			})
		})

		Convey("When the sort key is unknown", func() {
			_, err := svc.Leaderboard(ctx, service.Query{Sort: "followers"})

			Convey("Then ErrUnknownSortKey is returned", func() {
				So(errors.Is(err, ranking.ErrUnknownSortKey), ShouldBeTrue)
			})
		})

		Convey("When the page size is above the maximum", func() {
			_, err := svc.Leaderboard(ctx, service.Query{PageSize: 101})
			So(errors.Is(err, service.ErrPageSizeExceeded), ShouldBeTrue)
		})

		Convey("When the page size is negative", func() {
			_, err := svc.Leaderboard(ctx, service.Query{PageSize: -1})
			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
		})
	})

	Convey("Given an empty store", t, func() {
		svc := service.New()

		Convey("Then the leaderboard is an empty first page", func() {
			page, err := svc.Leaderboard(context.Background(), service.Query{Page: 3})
			So(err, ShouldBeNil)
			So(page.Page, ShouldEqual, 1)
			So(page.TotalPages, ShouldEqual, 0)
			So(page.Entries, ShouldBeEmpty)
		})
	})
}

func TestService_Member(t *testing.T) {
	Convey("Given a service over the three member batch", t, func() {
		svc := service.New(service.WithStore(seededStore()))
		ctx := context.Background()

		Convey("When a member card is requested in a different case", func() {
			card, err := svc.Member(ctx, "BOB")

			Convey("Then the score matches the leaderboard score", func() {
				So(err, ShouldBeNil)
				So(card.Handle, ShouldEqual, "bob")
				So(card.MagicianScore, ShouldEqual, 58.9)
				So(card.Rank, ShouldEqual, 2)
				So(card.TotalMembers, ShouldEqual, 3)
				So(card.Percentile, ShouldEqual, 66.7)
				So(card.Tier, ShouldEqual, rarity.TierRare)
			})
		})

		Convey("When the member is unknown", func() {
			_, err := svc.Member(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a service with a custom classifier", t, func() {
		svc := service.New(
			service.WithStore(seededStore()),
			service.WithClassifier(rarity.NewClassifier(rarity.WithReservedHandles([]string{"carol"}))),
		)

		Convey("Then the reserved handle gets the Founder tier regardless of score", func() {
			card, err := svc.Member(context.Background(), "carol")
			So(err, ShouldBeNil)
			So(card.Tier, ShouldEqual, rarity.TierFounder)
		})
	})
}

func TestService_UpsertMember(t *testing.T) {
	Convey("Given an empty service", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When a valid member is upserted", func() {
			err := svc.UpsertMember(ctx, model.ActivityRecord{Handle: "  dave ", PostsCount: 3})

			Convey("Then it appears on the leaderboard with a trimmed handle", func() {
				So(err, ShouldBeNil)
				So(entryHandles(svc, service.Query{}), ShouldResemble, []string{"dave"})
			})
		})

		Convey("When the handle is blank", func() {
			err := svc.UpsertMember(ctx, model.ActivityRecord{Handle: " "})
			So(errors.Is(err, service.ErrInvalidMember), ShouldBeTrue)
		})

		Convey("When a count is negative", func() {
			err := svc.UpsertMember(ctx, model.ActivityRecord{Handle: "eve", LikesTotal: -1})
			So(errors.Is(err, service.ErrInvalidMember), ShouldBeTrue)
		})
	})
}

func TestService_Valentines(t *testing.T) {
	Convey("Given a stopped service", t, func() {
		svc := service.New(service.WithStore(seededStore()))

		Convey("Then sending is refused", func() {
			_, _, err := svc.SendValentine(context.Background(), service.SendRequest{From: "alice", To: "bob", Message: "hi"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a started service", t, func() {
		sentAt := time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC)
		svc := service.New(
			service.WithStore(seededStore()),
			service.WithWorkerCount(1),
			service.WithClock(func() time.Time { return sentAt }),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a note is sent", func() {
			note, dup, err := svc.SendValentine(ctx, service.SendRequest{From: "Alice", To: "BOB", Message: "  you are magic  "})

			Convey("Then it is accepted with a generated ID", func() {
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
				So(note.NoteID, ShouldNotBeBlank)
				So(note.From, ShouldEqual, "alice")
				So(note.To, ShouldEqual, "bob")
				So(note.Message, ShouldEqual, "you are magic")
				So(note.SentAt.Equal(sentAt), ShouldBeTrue)
			})

			Convey("Then it is delivered to the recipient's inbox", func() {
				var inbox []model.Valentine
				delivered := eventually(func() bool {
					inbox, err = svc.Valentines(ctx, "bob")
					return err == nil && len(inbox) == 1
				})
				So(delivered, ShouldBeTrue)
				So(inbox[0].NoteID, ShouldEqual, note.NoteID)
			})
		})

		Convey("When the same note ID is sent twice", func() {
			req := service.SendRequest{NoteID: "note-1", From: "alice", To: "bob", Message: "hi"}
			_, first, err1 := svc.SendValentine(ctx, req)
			_, second, err2 := svc.SendValentine(ctx, req)

			Convey("Then the retry is reported as a duplicate", func() {
				So(err1, ShouldBeNil)
				So(first, ShouldBeFalse)
				So(err2, ShouldBeNil)
				So(second, ShouldBeTrue)
			})
		})

		Convey("When the note is invalid", func() {
			cases := []service.SendRequest{
				{From: "alice", To: "ALICE", Message: "me"},
				{From: "alice", To: "bob", Message: "   "},
				{From: "alice", To: "bob", Message: strings.Repeat("♥", service.MaxMessageRunes+1)},
				{From: "", To: "bob", Message: "hi"},
			}

			Convey("Then each is rejected as invalid", func() {
				for _, c := range cases {
					_, _, err := svc.SendValentine(ctx, c)
					So(errors.Is(err, service.ErrInvalidValentine), ShouldBeTrue)
				}
			})
		})

		Convey("When the message is exactly at the limit", func() {
			_, _, err := svc.SendValentine(ctx, service.SendRequest{From: "alice", To: "bob", Message: strings.Repeat("♥", service.MaxMessageRunes)})
			So(err, ShouldBeNil)
		})

		Convey("When the recipient is unknown", func() {
			_, _, err := svc.SendValentine(ctx, service.SendRequest{From: "alice", To: "ghost", Message: "hi"})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When reading the inbox of an unknown member", func() {
			_, err := svc.Valentines(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

// failingStore refuses every delivery.
type failingStore struct {
	*repository.MemoryStore
}

func (failingStore) SaveValentine(context.Context, model.Valentine) error {
	return errors.New("disk full")
}

func TestService_DeliveryFailure(t *testing.T) {
	Convey("Given a service whose store cannot save notes", t, func() {
		svc := service.New(service.WithStore(failingStore{seededStore()}), service.WithWorkerCount(1))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		req := service.SendRequest{NoteID: "retry-me", From: "alice", To: "bob", Message: "hi"}
		_, dup, err := svc.SendValentine(ctx, req)
		So(err, ShouldBeNil)
		So(dup, ShouldBeFalse)

		Convey("Then the note ID is released so the client can retry", func() {
			retried := eventually(func() bool {
				_, dup, err := svc.SendValentine(ctx, req)
				return err == nil && !dup
			})
			So(retried, ShouldBeTrue)
		})
	})
}

func TestService_StopAfterStartContextEnds(t *testing.T) {
	Convey("Given a service started on a context that is then cancelled", t, func() {
		svc := service.New(service.WithStore(seededStore()), service.WithWorkerCount(2))
		startCtx, cancel := context.WithCancel(context.Background())
		So(svc.Start(startCtx), ShouldBeNil)
		cancel()

		ctx := context.Background()
		note, dup, err := svc.SendValentine(ctx, service.SendRequest{From: "alice", To: "bob", Message: "still here"})
		So(err, ShouldBeNil)
		So(dup, ShouldBeFalse)

		Convey("When the service is stopped", func() {
			svc.Stop()

			Convey("Then the accepted note has been saved", func() {
				inbox, err := svc.Valentines(ctx, "bob")
				So(err, ShouldBeNil)
				So(len(inbox), ShouldEqual, 1)
				So(inbox[0].NoteID, ShouldEqual, note.NoteID)
			})
		})
	})
}

// snapshotOnlyStore fails point reads so callers must work from List.
type snapshotOnlyStore struct {
	*repository.MemoryStore
}

func (snapshotOnlyStore) Get(context.Context, string) (model.ActivityRecord, error) {
	return model.ActivityRecord{}, errors.New("point read not allowed")
}

func TestService_MemberSingleSnapshot(t *testing.T) {
	Convey("Given a store that only serves snapshots", t, func() {
		svc := service.New(service.WithStore(snapshotOnlyStore{seededStore()}))
		ctx := context.Background()

		Convey("When a member card is requested", func() {
			card, err := svc.Member(ctx, " Bob ")

			Convey("Then score and rank both come from the snapshot", func() {
				So(err, ShouldBeNil)
				So(card.Handle, ShouldEqual, "bob")
				So(card.MagicianScore, ShouldEqual, 58.9)
				So(card.Rank, ShouldEqual, 2)
				So(card.Percentile, ShouldEqual, 66.7)
			})
		})

		Convey("When the handle is not in the snapshot", func() {
			_, err := svc.Member(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
