package models

import "time"

// VideoChannel is a streaming provider integration (e.g. a jitsi or BBB server).
type VideoChannel struct {
	ID        int64
	Name      string
	Provider  string
	URL       string
	IconURL   string
	APIURL    string
	APIKey    string
	Extra     map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VideoChannelInput carries the attributes of a create request.
type VideoChannelInput struct {
	Name     string                 `json:"name" validate:"required,max=255"`
	Provider string                 `json:"provider" validate:"required,max=255"`
	URL      string                 `json:"url" validate:"required,url"`
	IconURL  string                 `json:"icon-url" validate:"omitempty,url"`
	APIURL   string                 `json:"api-url" validate:"omitempty,url"`
	APIKey   string                 `json:"api-key"`
	Extra    map[string]interface{} `json:"extra"`
}

// VideoChannelPatch carries the attributes of an update request; nil fields are
// left unchanged. An empty icon-url, api-url or api-key clears the column.
type VideoChannelPatch struct {
	Name     *string                `json:"name" validate:"omitnil,min=1,max=255"`
	Provider *string                `json:"provider" validate:"omitnil,min=1,max=255"`
	URL      *string                `json:"url" validate:"omitnil,url"`
	IconURL  *string                `json:"icon-url" validate:"omitnil,url|len=0"`
	APIURL   *string                `json:"api-url" validate:"omitnil,url|len=0"`
	APIKey   *string                `json:"api-key"`
	Extra    map[string]interface{} `json:"extra"`
}

// VideoStream links an event room to a video channel.
type VideoStream struct {
	ID        int64
	Name      string
	URL       string
	EventID   *int64
	ChannelID *int64
}
