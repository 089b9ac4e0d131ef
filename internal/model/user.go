package model

// Role classifies a user account.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleUnknown Role = "unknown"
)

// User is the stored user record.
type User struct {
	ID            string `json:"id" bson:"_id,omitempty"`
	Name          string `json:"name" bson:"name"`
	Email         string `json:"email" bson:"email"`
	DOB           string `json:"dob,omitempty" bson:"dob,omitempty"`
	Class         string `json:"class,omitempty" bson:"class,omitempty"`
	Role          Role   `json:"role" bson:"role"`
	LearningStyle string `json:"learningStyle,omitempty" bson:"learningStyle,omitempty"`
	Interests     string `json:"interests,omitempty" bson:"interests,omitempty"`
}

// Identity is a verified identity attached to a live connection.
// Role falls back to RoleUnknown when the user record carries none.
type Identity struct {
	UserID          string `json:"userId"`
	Role            Role   `json:"role"`
	ClassAssignment string `json:"classAssignment,omitempty"`
}
