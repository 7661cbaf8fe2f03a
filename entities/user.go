package entities

import "time"

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	Username  string `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	FirstName string `gorm:"type:varchar(150)" json:"first_name"`
	LastName  string `gorm:"type:varchar(150)" json:"last_name"`
	Password  string `gorm:"not null" json:"-"`
	AvatarURL string `json:"avatar,omitempty"`

	Timestamp
}

// Subscription is a directed follow from Subscriber to Author.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscriber_author" json:"subscriber_id"`
	AuthorID     uint      `gorm:"not null;uniqueIndex:idx_subscriber_author;check:chk_no_self_subscription,subscriber_id <> author_id" json:"author_id"`
	CreatedAt    time.Time `gorm:"type:timestamp;autoCreateTime" json:"created_at"`

	Subscriber *User `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	Author     *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
