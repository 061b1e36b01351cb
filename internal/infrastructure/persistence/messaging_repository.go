package persistence

import (
	"context"
	"time"

	"github.com/agencydesk/backend/internal/domain/messaging"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormConversationRepository implements messaging.ConversationRepository using GORM
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GormConversationRepository
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// memberOf selects the conversation ids userID participates in
func (r *GormConversationRepository) memberOf(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ParticipantModel{}).
		Select("conversation_id").
		Where("user_id = ?", userID)
}

// FindForParticipant loads a conversation with its participants when userID is one of them
func (r *GormConversationRepository) FindForParticipant(ctx context.Context, userID, id uuid.UUID) (*messaging.Conversation, error) {
	query := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ? AND id IN (?)", id, r.memberOf(ctx, userID))
	model, err := findOne[models.ConversationModel](query, messaging.ErrConversationNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListForParticipant returns the user's conversations, most recently active first
func (r *GormConversationRepository) ListForParticipant(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.PageResult[messaging.Conversation], error) {
	f := filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ConversationModel{}).
		Where("id IN (?)", r.memberOf(ctx, userID))
	query = applySearch(query, f.Search, "title")

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return shared.PageResult[messaging.Conversation]{}, err
	}

	var rows []models.ConversationModel
	err := query.Session(&gorm.Session{}).
		Preload("Participants").
		Order("COALESCE(last_message_at, created_at) DESC").
		Order("id DESC").
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error
	if err != nil {
		return shared.PageResult[messaging.Conversation]{}, err
	}
	return toDomainPage(shared.NewPageResult(rows, total, f.Page, f.PageSize), (*models.ConversationModel).ToDomain), nil
}

// Save writes the conversation row and inserts any participants not yet stored
func (r *GormConversationRepository) Save(ctx context.Context, conversation *messaging.Conversation) error {
	model := models.ConversationModelFromDomain(conversation)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if len(model.Participants) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Participants).Error
	})
}

// AddParticipant links a user to a conversation; adding an existing member is a no-op
func (r *GormConversationRepository) AddParticipant(ctx context.Context, p messaging.Participant) error {
	model := models.ParticipantModelFromDomain(p)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

// MarkRead records that userID has read the conversation up to at
func (r *GormConversationRepository) MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.ParticipantModel{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return messaging.ErrNotParticipant
	}
	return nil
}

// TouchLastMessage bumps the conversation's last activity time
func (r *GormConversationRepository) TouchLastMessage(ctx context.Context, conversationID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ConversationModel{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{"last_message_at": at, "updated_at": at}).Error
}

var _ messaging.ConversationRepository = (*GormConversationRepository)(nil)

// GormMessageRepository implements messaging.MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// FindByID finds a message within a conversation
func (r *GormMessageRepository) FindByID(ctx context.Context, conversationID, id uuid.UUID) (*messaging.Message, error) {
	query := r.db.WithContext(ctx).Where("conversation_id = ? AND id = ?", conversationID, id)
	model, err := findOne[models.MessageModel](query, messaging.ErrMessageNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a page of the conversation's messages, oldest first
func (r *GormMessageRepository) List(ctx context.Context, conversationID uuid.UUID, filter shared.Filter) (shared.PageResult[messaging.Message], error) {
	f := filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.MessageModel{}).
		Where("conversation_id = ?", conversationID)
	query = applySearch(query, f.Search, "content")

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return shared.PageResult[messaging.Message]{}, err
	}

	var rows []models.MessageModel
	err := query.Session(&gorm.Session{}).
		Order("created_at ASC").
		Order("id ASC").
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error
	if err != nil {
		return shared.PageResult[messaging.Message]{}, err
	}
	return toDomainPage(shared.NewPageResult(rows, total, f.Page, f.PageSize), (*models.MessageModel).ToDomain), nil
}

// Save creates or updates a message
func (r *GormMessageRepository) Save(ctx context.Context, message *messaging.Message) error {
	return r.db.WithContext(ctx).Save(models.MessageModelFromDomain(message)).Error
}

// CountUnread counts live messages from others newer than each of the user's read markers
func (r *GormMessageRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("messages AS m").
		Joins("JOIN conversation_participants AS p ON p.conversation_id = m.conversation_id AND p.user_id = ?", userID).
		Where("m.user_id <> ? AND m.is_deleted = ?", userID, false).
		Where("(p.last_read_at IS NULL OR m.created_at > p.last_read_at)").
		Count(&count).Error
	return count, err
}

var _ messaging.MessageRepository = (*GormMessageRepository)(nil)
