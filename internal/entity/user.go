package entity

// User is created on first identity sync (POST /auth/sync); lastSeenAt is
// updated on clean disconnect.
type User struct {
	Id          string `gorm:"column:id;primaryKey;size:191" json:"id"`
	Email       string `gorm:"column:email;uniqueIndex;size:191" json:"email"`
	DisplayName string `gorm:"column:display_name;size:191" json:"displayName"`
	ImageUrl    string `gorm:"column:image_url;size:512" json:"imageUrl,omitempty"`
	CreatedAt   int64  `gorm:"column:created_at;autoCreateTime:milli" json:"createdAt"`
	LastSeenAt  *int64 `gorm:"column:last_seen_at" json:"lastSeenAt,omitempty"`
}

func (User) TableName() string { return "users" }

// UserInfo is the public view of a user returned in API responses, using
// the §6 REST field names (name/image) rather than the data model's
// displayName/imageUrl.
type UserInfo struct {
	Id         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	LastSeenAt *int64 `json:"lastSeen,omitempty"`
}

func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		Id:         u.Id,
		Email:      u.Email,
		Name:       u.DisplayName,
		Image:      u.ImageUrl,
		CreatedAt:  u.CreatedAt,
		LastSeenAt: u.LastSeenAt,
	}
}
