package main

import (
	"context"

	"pingme/internal/models"
	"pingme/internal/observability"
	"pingme/internal/seed"

	"gorm.io/gorm"
)

func seedIfEmpty(db *gorm.DB) error {
	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		observability.Logger.Info("database already populated, skipping seed", "users", users)
		return nil
	}
	_, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:        10,
		PostsPerUser:    3,
		CommentsPerPost: 2,
		LikeRatio:       0.3,
	})
	return err
}
