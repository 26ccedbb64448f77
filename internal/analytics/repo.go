package analytics

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateSession(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// GetSessionBySessionID loads the session record together with the ordered
// list of inquiry IDs that belong to it.
func (r *Repo) GetSessionBySessionID(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ids := make([]string, 0)
	if err := r.db.WithContext(ctx).
		Model(&Inquiry{}).
		Where("session_id = ?", sessionID).
		Order("id ASC"). // ULIDs sort by creation time
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	s.InquiryIDs = ids
	return &s, nil
}

func (r *Repo) CreateInquiry(ctx context.Context, inq *Inquiry) error {
	return r.db.WithContext(ctx).Create(inq).Error
}

func (r *Repo) GetInquiry(ctx context.Context, id string) (*Inquiry, error) {
	var inq Inquiry
	if err := r.db.WithContext(ctx).First(&inq, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inq, nil
}

// PatchInquiry applies the non-zero fields of patch to one inquiry record.
// updated_at refreshes on every call. Stage fields are only ever advanced,
// never cleared: patches are additive by construction.
func (r *Repo) PatchInquiry(ctx context.Context, id string, patch *Inquiry) error {
	res := r.db.WithContext(ctx).
		Model(&Inquiry{}).
		Where("id = ?", id).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
