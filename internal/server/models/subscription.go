package models

import "time"

// Subscription is a directed edge: SubscriberID follows ChannelID.
type Subscription struct {
	ID           string    `json:"_id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ChannelProfile is the public view of a channel as seen by one viewer.
type ChannelProfile struct {
	ID                        string `json:"_id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullName"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCnt"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCnt"`
	IsSubscribed              bool   `json:"isSubscribed"`
}
