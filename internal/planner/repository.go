package planner

import "context"

// Repository is the plan store consumed by the HTTP layer and the alarm
// coordinator. Implemented by the embedded postgres store and by the remote
// REST client, selected via config.
type Repository interface {
	// Users
	CheckUser(ctx context.Context, userID, email, name string) (*User, bool, error)
	UpdateProteinGoal(ctx context.Context, userID string, goal int) (*User, error)

	// Daily plans
	AddDailyPlan(ctx context.Context, userID, planName, planDate string, slots []TimeSlot) (*DaySchedule, error)
	UpdateDailyPlan(ctx context.Context, planID int64, slots []TimeSlot) (*DaySchedule, error)
	GetAllPlansForDate(ctx context.Context, userID, dateISO string) ([]DaySchedule, error)
	GetUserDailyPlans(ctx context.Context, userID string) ([]DaySchedule, error)

	// Templates
	CreateTemplate(ctx context.Context, userID, name string, reminders []TemplateReminder) (*Template, error)
	GetUserTemplates(ctx context.Context, userID string) ([]Template, error)
	UpdateTemplate(ctx context.Context, templateID int64, name string, reminders []TemplateReminder) (*Template, error)
	DeleteTemplate(ctx context.Context, templateID int64) error

	// Bucket list
	GetBucketList(ctx context.Context, userID string) ([]BucketItem, error)
	AddBucketItem(ctx context.Context, userID, title, description string) ([]BucketItem, error)
	UpdateBucketList(ctx context.Context, userID string, items []BucketItem) ([]BucketItem, error)
	ReorderBucketList(ctx context.Context, userID string, ordered []BucketItem) ([]BucketItem, error)

	// Nutrition
	GetTodayMisc(ctx context.Context, userID, dateISO string) (*DailyMisc, error)
	AddProtein(ctx context.Context, userID, dateISO string, grams int) (*DailyMisc, error)
	ProteinHistory(ctx context.Context, userID string, days, offsetDays int) ([]DailyMisc, error)

	// ListUserIDs enumerates known users for the reschedule pass.
	ListUserIDs(ctx context.Context) ([]string, error)
}
