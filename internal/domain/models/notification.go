// internal/domain/models/notification.go
package models

// Notification is a message addressed to exactly one user (UserID).
// Timestamp is epoch milliseconds. Read only ever moves from false to true.
type Notification struct {
	ID        string `bson:"_id" json:"id"`
	GroupID   string `bson:"group_id" json:"groupId"`
	GroupName string `bson:"group_name" json:"groupName"`
	Message   string `bson:"message" json:"message"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
	Read      bool   `bson:"read" json:"read"`
	UserID    string `bson:"user_id" json:"userId"`
}
