// Command seed fills the database with demo developers, projects and engagement.
package main

import (
	"context"
	"flag"
	"log"

	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/seed"
)

func main() {
	developers := flag.Int("developers", 20, "Number of generated developers")
	recruiters := flag.Int("recruiters", 8, "Number of generated hr/user accounts")
	projects := flag.Int("projects", 3, "Projects per generated developer")
	upvotes := flag.Int("max-upvotes", 15, "Maximum upvotes per project")
	comments := flag.Int("max-comments", 6, "Maximum comments per project")
	fixturePath := flag.String("fixture", "", "YAML fixture to load (defaults to the built-in demo set)")
	noFixture := flag.Bool("no-fixture", false, "Skip the fixture and only generate random data")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var fixture *seed.Fixture
	switch {
	case *noFixture:
	case *fixturePath != "":
		fixture, err = seed.LoadFixture(*fixturePath)
	default:
		fixture, err = seed.DemoFixture()
	}
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, seed.Options{
		Developers:           *developers,
		Recruiters:           *recruiters,
		ProjectsPerDeveloper: *projects,
		MaxUpvotes:           *upvotes,
		MaxComments:          *comments,
		RandomSeed:           *randomSeed,
	})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	summary, err := s.Run(ctx, fixture)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	password := seed.DefaultPassword
	if fixture != nil {
		password = fixture.Password
	}
	log.Printf("Seeded %d accounts, %d projects, %d upvotes, %d comments", summary.Accounts, summary.Projects, summary.Upvotes, summary.Comments)
	log.Printf("All seeded accounts use the password: %s", password)
}
