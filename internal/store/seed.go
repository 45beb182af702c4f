package store

import (
	"context"
	"fmt"
	"time"

	"taskboard/internal/models"
)

// DemoTasks returns the demonstration task set with dates relative to today.
func DemoTasks(today models.Date) []models.Task {
	return []models.Task{
		{
			Title:       "Complete Python Assignment",
			Description: "Submit Student Management System project",
			Category:    models.CategoryStudy,
			Priority:    models.PriorityHigh,
			Deadline:    today.AddDays(1),
			CreatedDate: today,
		},
		{
			Title:       "TEDx Instagram Content Planning",
			Description: "Plan next week's Instagram posts and engagement strategy",
			Category:    models.CategoryCollege,
			Priority:    models.PriorityMedium,
			Deadline:    today.AddDays(2),
			CreatedDate: today,
		},
		{
			Title:       "Database Design Review",
			Description: "Review database schema for the project",
			Category:    models.CategoryProject,
			Priority:    models.PriorityHigh,
			Deadline:    today,
			CreatedDate: today.AddDays(-1),
		},
		{
			Title:       "Purchase ANC Earbuds",
			Description: "Compare OnePlus Nord Buds options",
			Category:    models.CategoryPersonal,
			Priority:    models.PriorityLow,
			Deadline:    today.AddDays(5),
			CreatedDate: today.AddDays(-6),
		},
		{
			Title:       "Attend Data Structures Class",
			Description: "String matching algorithms and KMP implementation",
			Category:    models.CategoryStudy,
			Priority:    models.PriorityHigh,
			Deadline:    today.AddDays(1),
			Completed:   true,
			CreatedDate: today.AddDays(-1),
		},
	}
}

// Seed loads the demonstration tasks into s.
func Seed(ctx context.Context, s Store, now time.Time) error {
	if err := s.LoadTasks(ctx, DemoTasks(models.DateOf(now))); err != nil {
		return fmt.Errorf("failed to seed demo tasks: %w", err)
	}
	return nil
}
