package repository

import (
	"context"
	"time"

	"university-results-backend/app/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditRepository writes the MongoDB side of the system: activity and
// approval audit documents plus user notifications. These collections
// are an append-only mirror for reporting; the relational
// ApprovalHistory table stays authoritative, so a failed write here is
// logged by the caller and never rolls anything back.
type AuditRepository interface {
	LogActivity(ctx context.Context, entry *model.ActivityLog) error
	LogApproval(ctx context.Context, entry *model.ApprovalLog) error
	PushNotification(ctx context.Context, notification *model.Notification) error

	// GetApprovalTrail returns the Mongo-side audit documents for one
	// submission in chronological order.
	GetApprovalTrail(ctx context.Context, submissionID string) ([]model.ApprovalLog, error)

	// CountApprovalsByStage aggregates decided approval documents per
	// stage number for dashboard reporting.
	CountApprovalsByStage(ctx context.Context, submissionID string) (map[int]int64, error)
}

type auditRepository struct {
	mongo *mongo.Database
}

// NewAuditRepository creates a new auditRepository instance.
func NewAuditRepository(mongoDB *mongo.Database) AuditRepository {
	return &auditRepository{mongo: mongoDB}
}

func (r *auditRepository) LogActivity(ctx context.Context, entry *model.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := r.mongo.Collection("activity_logs").InsertOne(ctx, entry)
	return err
}

func (r *auditRepository) LogApproval(ctx context.Context, entry *model.ApprovalLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := r.mongo.Collection("approval_logs").InsertOne(ctx, entry)
	return err
}

func (r *auditRepository) PushNotification(ctx context.Context, notification *model.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	_, err := r.mongo.Collection("notifications").InsertOne(ctx, notification)
	return err
}

func (r *auditRepository) GetApprovalTrail(ctx context.Context, submissionID string) ([]model.ApprovalLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.mongo.Collection("approval_logs").
		Find(ctx, bson.M{"submissionId": submissionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trail []model.ApprovalLog
	if err := cursor.All(ctx, &trail); err != nil {
		return nil, err
	}
	return trail, nil
}

func (r *auditRepository) CountApprovalsByStage(ctx context.Context, submissionID string) (map[int]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"submissionId": submissionID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$stageNumber",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.mongo.Collection("approval_logs").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[int]int64)
	for cursor.Next(ctx) {
		var row struct {
			StageNumber int   `bson:"_id"`
			Count       int64 `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.StageNumber] = row.Count
	}
	return counts, cursor.Err()
}
