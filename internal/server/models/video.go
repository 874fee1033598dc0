package models

import "time"

// WatchedVideo is one entry of a user's watch history with its owner
// projected down to public fields.
type WatchedVideo struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Thumbnail   string      `json:"thumbnail"`
	Duration    float64     `json:"duration"`
	Views       int64       `json:"views"`
	Likes       int64       `json:"likes"`
	Dislikes    int64       `json:"dislikes"`
	IsPublished bool        `json:"isPublished"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Owner       *VideoOwner `json:"owner"`
}

// VideoOwner is the projection of a video's uploader.
type VideoOwner struct {
	FullName   string `json:"fullName"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
}
