package model

// User is a dashboard user authenticated through Discord OAuth. Tokens are
// kept so the API can query the user's guild list on their behalf.
type User struct {
	ID           string `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Avatar       string `db:"avatar" json:"avatar"`
	AccessToken  string `db:"access_token" json:"-"`
	RefreshToken string `db:"refresh_token" json:"-"`
	CreatedAt    int64  `db:"created_at" json:"createdAt"`
	UpdatedAt    int64  `db:"updated_at" json:"updatedAt"`
}
