package storage

// QueueMember is one row of queue membership. Rows are ordered by the
// auto-increment ID, so listing by ID ascending yields join order.
// Uniqueness of (ChatID, MessageID, UserID) is enforced by Storage.Add,
// not by the schema; the composite index only serves the range queries.
type QueueMember struct {
	ID        uint  `gorm:"primarykey"`
	ChatID    int64 `gorm:"index:idx_queue_message"`
	MessageID int   `gorm:"index:idx_queue_message"`
	UserID    int64 `gorm:"index"`
	FirstName string
	LastName  string
	Username  string
}
