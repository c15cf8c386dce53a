// Command seed fills the configured database with demo forum data.
package main

import (
	"flag"
	"log"

	"forum/internal/config"
	"forum/internal/database"
	"forum/internal/seed"
)

func main() {
	users := flag.Int("users", 20, "Number of users to create")
	topics := flag.Int("topics", 3, "Topics per subcategory")
	posts := flag.Int("posts", 5, "Posts per topic")
	comments := flag.Int("comments", 2, "Comments per post")
	clean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt; seeded users cannot log in")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		Users:            *users,
		TopicsPerSection: *topics,
		PostsPerTopic:    *posts,
		CommentsPerPost:  *comments,
		SkipBcrypt:       *fast,
	}
	s := seed.NewSeeder(db, opts)

	if *clean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}
	if err := s.Run(opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded users have the password: %s", seed.DemoPassword)
}
