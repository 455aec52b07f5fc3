package domain

// DefaultCapacityHours is the daily capacity given to new profiles.
const DefaultCapacityHours = 8

// User is a team member profile.
type User struct {
	ID                 string  `json:"id"`
	FullName           string  `json:"full_name"`
	Role               string  `json:"role"`
	AvatarURL          string  `json:"avatar_url"`
	DailyCapacityHours float64 `json:"daily_capacity_hours"`
}

// String returns the display name.
func (u User) String() string {
	if u.FullName == "" {
		return u.ID
	}
	return u.FullName
}
