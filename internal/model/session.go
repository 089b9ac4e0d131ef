package model

import "time"

// TargetAll addresses a notification to every connected user rather
// than a single class.
const TargetAll = "All"

// Session is a scheduled live classroom session record.
type Session struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID     string    `json:"sessionId" bson:"sessionId"`
	SessionName   string    `json:"sessionName" bson:"sessionName"`
	Subject       string    `json:"subject,omitempty" bson:"subject,omitempty"`
	Topic         string    `json:"topic,omitempty" bson:"topic,omitempty"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	JoinLink      string    `json:"joinLink" bson:"joinLink"`
	ScheduledTime time.Time `json:"scheduledTime" bson:"scheduledTime"`
	CreatedBy     string    `json:"createdBy" bson:"createdBy"`
	TargetClass   string    `json:"targetClass" bson:"targetClass"`
}
