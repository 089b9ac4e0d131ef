package model

import "time"

// Material is an uploaded study material record. Only the metadata lives
// here; file storage is handled elsewhere.
type Material struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	FileName    string    `json:"fileName" bson:"fileName"`
	FilePath    string    `json:"filePath" bson:"filePath"`
	Subject     string    `json:"subject" bson:"subject"`
	Comment     string    `json:"comment,omitempty" bson:"comment,omitempty"`
	UploadedBy  string    `json:"uploadedBy" bson:"uploadedBy"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	TargetClass string    `json:"targetClass" bson:"targetClass"`
}
