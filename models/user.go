package models

// User holds the structure for the users collection in mongo. Identity values
// supplied by the auth layer (Clerk id, legacy id, or email) are stored and
// matched opaquely.
type User struct {
	ID      string      `json:"_id" bson:"_id"`
	Details UserDetails `json:"user" bson:"user"`
	Version int32       `json:"__v" bson:"__v"`
}

// UserDetails holds the inner user document.
type UserDetails struct {
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"password" bson:"password"`
	ClerkID  string `json:"clerkId,omitempty" bson:"clerkId,omitempty"`
	// FileNumber is the permanent registry number, e.g. MDMS-2024-000001.
	// One per user, reused across every case they open.
	FileNumber string      `json:"fileNumber,omitempty" bson:"fileNumber,omitempty"`
	Roles      []string    `json:"roles" bson:"roles"`
	CreatedAt  interface{} `json:"createdAt" bson:"createdAt"`
	UpdatedAt  interface{} `json:"updatedAt" bson:"updatedAt"`
}

// IsQazi reports whether the user carries the qazi (admin) role.
func (u *User) IsQazi() bool {
	for _, r := range u.Details.Roles {
		if r == "qazi" || r == "admin" {
			return true
		}
	}
	return false
}
