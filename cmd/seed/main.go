// Command seed fills the mock API database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"pingme/internal/config"
	"pingme/internal/database"
	"pingme/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 5, "Posts per user")
	commentsPerPost := flag.Int("comments", 3, "Comments per post")
	likeRatio := flag.Float64("likes", 0.25, "Chance that a user likes a post (0-1)")
	maxDays := flag.Int("days", 30, "Spread post dates over this many days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt for fake accounts (they cannot log in)")
	randSeed := flag.Int64("rand", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	_ = godotenv.Load()

	log.Printf("Target: %d users, %d posts each, clean=%v", *numUsers, *postsPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	res, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:        *numUsers,
		PostsPerUser:    *postsPerUser,
		CommentsPerPost: *commentsPerPost,
		LikeRatio:       *likeRatio,
		MaxDays:         *maxDays,
		SkipBcrypt:      *fast,
		ShouldClean:     *shouldClean,
		RandSeed:        *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d likes", res.Users, res.Posts, res.Comments, res.Likes)
	log.Printf("Demo login: %s / %s", seed.DemoEmail, seed.DemoPassword)
}
