package domain

import "time"

const (
	MessageStatusNew  = "new"
	MessageStatusRead = "read"
)

// ContactMessage is a submission of the public contact form
type ContactMessage struct {
	ID        int64     `json:"id,string"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:64" json:"phone"`
	Subject   string    `gorm:"size:255" json:"subject"`
	Message   string    `gorm:"type:text" json:"message"`
	Status    string    `gorm:"size:16;index" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (ContactMessage) TableName() string {
	return "contact_message"
}
