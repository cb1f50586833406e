package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityLog is one audit document in MongoDB (collection:
// activity_logs). It mirrors state changes for reporting; the relational
// ApprovalHistory table remains the authoritative, transactional trail.
// These documents are written fire-and-forget after commit and a write
// failure never rolls back the operation that produced them.
type ActivityLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ActorID     string             `bson:"actorId"`
	ActorRole   string             `bson:"actorRole"`
	Action      string             `bson:"action"`      // create / update / lock / unlock / release
	ContentType string             `bson:"contentType"` // e.g. "result", "result_lock", "result_release"
	ObjectID    string             `bson:"objectId"`
	Description string             `bson:"description,omitempty"`
	Changes     map[string]any     `bson:"changes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// ApprovalLog is one workflow audit document (collection: approval_logs).
type ApprovalLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	SubmissionID string             `bson:"submissionId"`
	ActionID     string             `bson:"actionId"`
	StageNumber  int                `bson:"stageNumber"`
	ActorID      string             `bson:"actorId"`
	ActorRole    string             `bson:"actorRole"`
	Action       string             `bson:"action"` // submitted / approved / rejected / correction_requested / correction_completed
	Comments     string             `bson:"comments,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

// Notification is one user-facing notification document (collection:
// notifications). Delivery (mail, push) is out of scope; this store is
// what the presentation layer polls.
type Notification struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"userId,omitempty"`        // empty when targeting a role
	TargetRole      string             `bson:"targetRole,omitempty"`    // e.g. "registrar" for approval_needed
	Type            string             `bson:"notificationType"`        // result_published / approval_needed / correction_requested
	Title           string             `bson:"title"`
	Message         string             `bson:"message"`
	RelatedObjectID string             `bson:"relatedObjectId,omitempty"`
	IsRead          bool               `bson:"isRead"`
	ReadAt          *time.Time         `bson:"readAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
}
