package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
)

// conversationRow is the persisted shape of a conversation. MessageIDs is
// kept as a JSON-encoded id list so the column mirrors the durable schema
// exactly; decoding happens on read and a bad payload makes the row absent.
type conversationRow struct {
	ID         string `gorm:"primaryKey"`
	Title      string `gorm:"size:200"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	IsPinned   bool
	MessageIDs []byte
}

func (conversationRow) TableName() string {
	return "conversations"
}

type messageRow struct {
	ID             string `gorm:"primaryKey"`
	ConversationID string `gorm:"index"`
	Sender         string
	Content        string `gorm:"type:text"`
	Rating         string
	Timestamp      time.Time
}

func (messageRow) TableName() string {
	return "messages"
}

type usageRow struct {
	Date  string `gorm:"primaryKey"` // YYYY-MM-DD
	Count int
	Tier  string
}

func (usageRow) TableName() string {
	return "usage"
}

type flagRow struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value bool
}

func (flagRow) TableName() string {
	return "flags"
}

// GormStore is the durable Store implementation backed by gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the schema and returns a ready store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&conversationRow{}, &messageRow{}, &usageRow{}, &flagRow{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) GetConversation(id string) (*models.Conversation, error) {
	var row conversationRow
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("conversation %s", id)
		}
		return nil, err
	}
	conv, ok := decodeConversation(row)
	if !ok {
		return nil, apperrors.NotFoundf("conversation %s", id)
	}
	return conv, nil
}

func (s *GormStore) ListConversations() ([]models.Conversation, error) {
	var rows []conversationRow
	if err := s.db.Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	conversations := make([]models.Conversation, 0, len(rows))
	for _, row := range rows {
		if conv, ok := decodeConversation(row); ok {
			conversations = append(conversations, *conv)
		}
	}
	return conversations, nil
}

func (s *GormStore) PutConversation(c *models.Conversation) error {
	ids, err := json.Marshal(c.MessageIDs)
	if err != nil {
		return fmt.Errorf("failed to encode message ids: %w", err)
	}
	row := conversationRow{
		ID:         c.ID,
		Title:      c.Title,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		IsPinned:   c.IsPinned,
		MessageIDs: ids,
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *GormStore) DeleteConversation(id string) error {
	return s.db.Delete(&conversationRow{}, "id = ?", id).Error
}

func (s *GormStore) GetMessage(id string) (*models.Message, error) {
	var row messageRow
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("message %s", id)
		}
		return nil, err
	}
	msg := decodeMessage(row)
	return &msg, nil
}

func (s *GormStore) ListMessages() ([]models.Message, error) {
	var rows []messageRow
	if err := s.db.Order("timestamp asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	messages := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, decodeMessage(row))
	}
	return messages, nil
}

func (s *GormStore) PutMessage(m *models.Message) error {
	row := messageRow{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         string(m.Sender),
		Content:        m.Content,
		Rating:         string(m.Rating),
		Timestamp:      m.Timestamp,
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *GormStore) DeleteMessage(id string) error {
	return s.db.Delete(&messageRow{}, "id = ?", id).Error
}

func (s *GormStore) GetUsage(date string) (*models.UsageCounter, error) {
	var row usageRow
	if err := s.db.First(&row, "date = ?", date).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("usage counter %s", date)
		}
		return nil, err
	}
	if _, err := time.Parse(models.DateFormat, row.Date); err != nil {
		// Unparsable date makes the counter absent, not fatal.
		return nil, apperrors.NotFoundf("usage counter %s", date)
	}
	return &models.UsageCounter{
		Date:  row.Date,
		Count: row.Count,
		Tier:  models.Tier(row.Tier),
	}, nil
}

func (s *GormStore) PutUsage(u *models.UsageCounter) error {
	row := usageRow{Date: u.Date, Count: u.Count, Tier: string(u.Tier)}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *GormStore) GetFlag(key string) (bool, error) {
	var row flagRow
	if err := s.db.First(&row, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return row.Value, nil
}

func (s *GormStore) SetFlag(key string) error {
	row := flagRow{Key: key, Value: true}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func decodeConversation(row conversationRow) (*models.Conversation, bool) {
	var ids []string
	if len(row.MessageIDs) > 0 {
		if err := json.Unmarshal(row.MessageIDs, &ids); err != nil {
			return nil, false
		}
	}
	return &models.Conversation{
		ID:         row.ID,
		Title:      row.Title,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		IsPinned:   row.IsPinned,
		MessageIDs: ids,
	}, true
}

func decodeMessage(row messageRow) models.Message {
	return models.Message{
		ID:             row.ID,
		ConversationID: row.ConversationID,
		Sender:         models.Sender(row.Sender),
		Content:        row.Content,
		Rating:         models.Rating(row.Rating),
		Timestamp:      row.Timestamp,
	}
}
