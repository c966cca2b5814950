package models

import "time"

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelTelegram Channel = "telegram"
	ChannelPush     Channel = "push"
)

const DefaultReviewHour = 9

type NotificationSettings struct {
	ProfileID       int64      `db:"profile_id" json:"profile_id"`
	EmailEnabled    bool       `db:"email_enabled" json:"email_enabled"`
	TelegramEnabled bool       `db:"telegram_enabled" json:"telegram_enabled"`
	PushEnabled     bool       `db:"push_enabled" json:"push_enabled"`
	ReviewHour      int        `db:"review_hour" json:"review_hour"`
	LastNotifiedAt  *time.Time `db:"last_notified_at" json:"last_notified_at"`
}

// Channels returns the enabled channels in a stable order.
func (s NotificationSettings) Channels() []Channel {
	var out []Channel
	if s.EmailEnabled {
		out = append(out, ChannelEmail)
	}
	if s.TelegramEnabled {
		out = append(out, ChannelTelegram)
	}
	if s.PushEnabled {
		out = append(out, ChannelPush)
	}
	return out
}

// NotificationSettingsUpdate carries a partial update; nil fields are left unchanged.
type NotificationSettingsUpdate struct {
	EmailEnabled    *bool `json:"email_enabled"`
	TelegramEnabled *bool `json:"telegram_enabled"`
	PushEnabled     *bool `json:"push_enabled"`
	ReviewHour      *int  `json:"review_hour" validate:"omitempty,min=0,max=23"`
}

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxError   OutboxStatus = "error"
)

type OutboxEntry struct {
	ID          int64        `db:"id" json:"id"`
	ProfileID   int64        `db:"profile_id" json:"profile_id"`
	Channel     Channel      `db:"channel" json:"channel"`
	Payload     RawJSON      `db:"payload" json:"payload"`
	Status      OutboxStatus `db:"status" json:"status"`
	ScheduledAt time.Time    `db:"scheduled_at" json:"scheduled_at"`
	SentAt      *time.Time   `db:"sent_at" json:"sent_at"`
	Error       *string      `db:"error" json:"error"`
}
