// Command inspect loads one idea or category from the configured database and
// pretty-prints it. For an idea it also checks the stored vote counters and
// the loaded comments against the live rows and exits 1 on drift.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/k0kubun/pp/v3"

	"github.com/sowhat1234/yazamutforum/internal/config"
	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/models"
	"github.com/sowhat1234/yazamutforum/internal/service"
)

func main() {
	ideaID := flag.String("idea", "", "idea id to load")
	categorySlug := flag.String("category", "", "category slug to load")
	flag.Parse()

	if (*ideaID == "") == (*categorySlug == "") {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	logger := log.New(os.Stderr, "inspect: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	repo, err := db.NewRepository(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	svc := service.New(repo, logger)

	if *categorySlug != "" {
		category, err := svc.Categories.GetBySlug(ctx, *categorySlug)
		if err != nil {
			log.Fatal(err)
		}
		pp.Print(category)
		return
	}

	idea, err := svc.Ideas.GetByID(ctx, *ideaID)
	if err != nil {
		log.Fatal(err)
	}
	pp.Print(idea)

	stored, live, err := checkIdea(ctx, repo, idea)
	if err != nil {
		log.Fatal(err)
	}
	if stored != live {
		logger.Printf("idea %s drifted: stored %+v, live %+v", idea.ID, stored, live)
		os.Exit(1)
	}
}

// tally is what an idea reports about its votes and comments.
type tally struct {
	Upvotes   int
	Downvotes int
	Comments  int
}

// checkIdea returns the idea's stored counters next to the live row counts.
func checkIdea(ctx context.Context, repo *db.Repository, idea *models.IdeaDetail) (stored, live tally, err error) {
	stored = tally{Upvotes: idea.Upvotes, Downvotes: idea.Downvotes}
	for _, c := range idea.Comments {
		stored.Comments += 1 + len(c.Replies)
	}

	if live.Upvotes, live.Downvotes, err = repo.CountVotes(ctx, idea.ID); err != nil {
		return stored, live, err
	}
	if live.Comments, err = repo.CountComments(ctx, idea.ID); err != nil {
		return stored, live, err
	}
	return stored, live, nil
}
