package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// Методы для сессий обслуживания. Реализуют lifecycle.Store.

// CreateSession создаёт сессию.
func (r *Repository) CreateSession(session *ds.Session) error {
	return r.db.Create(session).Error
}

// SessionByID возвращает сессию с фотографиями и платежами.
func (r *Repository) SessionByID(id uint) (*ds.Session, error) {
	var session ds.Session
	err := r.db.
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ds.NotFound("сессия %d не найдена", id)
		}
		return nil, err
	}
	return &session, nil
}

// SessionByCard возвращает сессию по номеру карточки клиента.
func (r *Repository) SessionByCard(card string) (*ds.Session, error) {
	var session ds.Session
	err := r.db.
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("client_card_number = ?", card).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ds.NotFound("сессия по карточке %s не найдена", card)
		}
		return nil, err
	}
	return &session, nil
}

// SaveSession сохраняет поля сессии без каскада по ассоциациям.
func (r *Repository) SaveSession(session *ds.Session) error {
	return r.db.Omit(clause.Associations).Save(session).Error
}

// ListSessions возвращает сессии с фильтрами по статусу и датам создания.
func (r *Repository) ListSessions(status string, dateFrom, dateTo *time.Time) ([]ds.Session, error) {
	query := r.db.Model(&ds.Session{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if dateFrom != nil {
		query = query.Where("created_at >= ?", *dateFrom)
	}
	if dateTo != nil {
		query = query.Where("created_at < ?", dateTo.AddDate(0, 0, 1))
	}

	var sessions []ds.Session
	err := query.Find(&sessions).Error
	return sessions, err
}

// AppendPhoto добавляет ссылку на фотографию.
func (r *Repository) AppendPhoto(photo *ds.SessionPhoto) error {
	return r.db.Create(photo).Error
}

// DeletePhoto удаляет фотографию сессии.
func (r *Repository) DeletePhoto(sessionID, photoID uint) error {
	result := r.db.Where("session_id = ? AND id = ?", sessionID, photoID).Delete(&ds.SessionPhoto{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ds.NotFound("фотография %d не найдена в сессии %d", photoID, sessionID)
	}
	return nil
}

// AppendStatusLog дописывает запись журнала переходов.
// Журнал append-only: записи не редактируются и не удаляются.
func (r *Repository) AppendStatusLog(entry *ds.SessionStatusLog) error {
	return r.db.Create(entry).Error
}

// StatusLog возвращает журнал переходов в порядке добавления.
func (r *Repository) StatusLog(sessionID uint) ([]ds.SessionStatusLog, error) {
	var entries []ds.SessionStatusLog
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}
