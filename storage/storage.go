package storage

import (
	"fmt"
	"log/slog"
	"sync"

	"telegram-queue-bot/queue"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Storage persists queue membership. A single process-wide mutex wraps
// every operation so an existence check can never interleave with
// another check-then-mutate for the same key. Button presses are
// low-volume enough that global serialization costs nothing and rules
// out lost updates entirely.
type Storage struct {
	db *gorm.DB
	mu sync.Mutex
}

func New(dbPath string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		slog.Error("storage: Failed to connect to database", "error", err, "path", dbPath)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) migrate() error {
	err := s.db.AutoMigrate(&QueueMember{})
	if err != nil {
		slog.Error("storage: Failed to migrate database", "error", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// List returns the members of a queue in join order.
func (s *Storage) List(key queue.Key) ([]queue.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []QueueMember
	result := s.db.
		Where("chat_id = ? AND message_id = ?", key.ChatID, key.MessageID).
		Order("id ASC").
		Find(&rows)
	if result.Error != nil {
		slog.Error("storage: Failed to list queue members", "error", result.Error,
			"chat_id", key.ChatID, "message_id", key.MessageID)
		return nil, fmt.Errorf("failed to list queue members: %w", result.Error)
	}

	members := make([]queue.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, queue.Member{
			UserID:    row.UserID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Username:  row.Username,
		})
	}

	return members, nil
}

// Add inserts a member into a queue. Returns false without changing
// anything when the user is already in it.
func (s *Storage) Add(key queue.Key, member queue.Member) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	result := s.db.Model(&QueueMember{}).
		Where("chat_id = ? AND message_id = ? AND user_id = ?", key.ChatID, key.MessageID, member.UserID).
		Count(&count)
	if result.Error != nil {
		slog.Error("storage: Failed to check queue membership", "error", result.Error,
			"chat_id", key.ChatID, "message_id", key.MessageID, "user_id", member.UserID)
		return false, fmt.Errorf("failed to check queue membership: %w", result.Error)
	}

	if count > 0 {
		return false, nil
	}

	row := QueueMember{
		ChatID:    key.ChatID,
		MessageID: key.MessageID,
		UserID:    member.UserID,
		FirstName: member.FirstName,
		LastName:  member.LastName,
		Username:  member.Username,
	}

	result = s.db.Create(&row)
	if result.Error != nil {
		slog.Error("storage: Failed to add queue member", "error", result.Error,
			"chat_id", key.ChatID, "message_id", key.MessageID, "user_id", member.UserID)
		return false, fmt.Errorf("failed to add queue member: %w", result.Error)
	}

	return true, nil
}

// Remove deletes a member from a queue. Returns false when the user was
// not in it.
func (s *Storage) Remove(key queue.Key, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.
		Where("chat_id = ? AND message_id = ? AND user_id = ?", key.ChatID, key.MessageID, userID).
		Delete(&QueueMember{})
	if result.Error != nil {
		slog.Error("storage: Failed to remove queue member", "error", result.Error,
			"chat_id", key.ChatID, "message_id", key.MessageID, "user_id", userID)
		return false, fmt.Errorf("failed to remove queue member: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// Clear deletes every member of a queue. Used when the queue itself is
// deleted; clearing an already empty queue is not an error.
func (s *Storage) Clear(key queue.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.
		Where("chat_id = ? AND message_id = ?", key.ChatID, key.MessageID).
		Delete(&QueueMember{})
	if result.Error != nil {
		slog.Error("storage: Failed to clear queue", "error", result.Error,
			"chat_id", key.ChatID, "message_id", key.MessageID)
		return fmt.Errorf("failed to clear queue: %w", result.Error)
	}

	return nil
}
