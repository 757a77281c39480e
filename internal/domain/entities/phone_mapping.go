package entities

import (
	"time"

	"github.com/google/uuid"
)

// PhoneNumberMapping links a WhatsApp sender phone number to an application
// user, so inbound voice notes can be attributed on receipt.
type PhoneNumberMapping struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PhoneNumber string    `json:"phone_number" gorm:"type:varchar(20);uniqueIndex;not null"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (PhoneNumberMapping) TableName() string {
	return "phone_number_mappings"
}
