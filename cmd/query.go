package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	app "github.com/okian/magicboard/internal/app"
	"github.com/okian/magicboard/internal/domain/types"
)

type leaderboardArgs struct {
	sort     string
	search   string
	page     int
	pageSize int
	json     bool
}

func runLeaderboard(ctx context.Context, w io.Writer, args leaderboardArgs) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := newService(cfg, store, log)
	page, err := svc.Leaderboard(ctx, app.Query{
		Sort:     args.sort,
		Search:   args.search,
		Page:     args.page,
		PageSize: args.pageSize,
	})
	if err != nil {
		return err
	}
	if args.json {
		return writeJSON(w, page)
	}
	return printLeaderboard(w, page)
}

func runMember(ctx context.Context, w io.Writer, handle string, asJSON bool) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	card, err := newService(cfg, store, log).Member(ctx, handle)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, card)
	}
	return printCard(w, card)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLeaderboard(w io.Writer, page types.LeaderboardPage) error {
	if len(page.Entries) == 0 {
		_, err := fmt.Fprintln(w, "No members found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tHANDLE\tSCORE\tTIER\tPOSTS\tLIKES\tVIEWS")
	for i := range page.Entries {
		e := &page.Entries[i]
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%s\t%d\t%d\t%d\n",
			e.Rank, e.Handle, e.MagicianScore, e.Tier, e.PostsCount, e.LikesTotal, e.ViewsTotal)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nsort=%s page %d/%d (%d members)\n", page.Sort, page.Page, page.TotalPages, page.TotalCount)
	return err
}

func printCard(w io.Writer, card types.Card) error { //nolint:gocritic // hugeParam: card is a value type
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Handle\t%s\n", card.Handle)
	if card.DisplayName != "" {
		fmt.Fprintf(tw, "Name\t%s\n", card.DisplayName)
	}
	fmt.Fprintf(tw, "Tier\t%s\n", card.Style.Label)
	fmt.Fprintf(tw, "Score\t%.1f\n", card.MagicianScore)
	fmt.Fprintf(tw, "Rank\t#%d of %d\n", card.Rank, card.TotalMembers)
	fmt.Fprintf(tw, "Top\t%.1f%%\n", card.Percentile)
	fmt.Fprintf(tw, "Posts\t%d\n", card.PostsCount)
	fmt.Fprintf(tw, "Likes\t%d\n", card.LikesTotal)
	fmt.Fprintf(tw, "Views\t%d\n", card.ViewsTotal)
	return tw.Flush()
}
