// Package lifelog records what an avatar ate, did, took and felt, grouped
// per day, and aggregates the daily condition scores.
package lifelog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dymm/internal/lifespan"
	"dymm/internal/paging"
	"dymm/internal/tag"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrGroupNotFound = errors.New("log group not found")
var ErrLogNotFound = errors.New("tag log not found")
var ErrTagNotFound = errors.New("tag not found")
var ErrNotLoggable = errors.New("tag cannot be logged")
var ErrInvalidScore = errors.New("invalid condition score")

const (
	// HistoryLimit caps the recently-logged list.
	HistoryLimit = 24
	// NotesPageSize is the page size of the diary listing.
	NotesPageSize = 20
)

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type CreateLogInput struct {
	AvatarID uint64
	TagID    uint64
	LogDate  time.Time
	XVal     int
	YVal     int
	// GroupID adds to an existing group instead of the group for LogDate.
	GroupID *uint64
}

// CreateLog stores a tag log in the day's group, creating the group on the
// first log of the day, and refreshes the avatar's log history.
func (s *Service) CreateLog(ctx context.Context, in CreateLogInput) (groupID uint64, err error) {
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t tag.Tag
		if err := tx.Where("id=? AND is_active=?", in.TagID, true).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTagNotFound
			}
			return err
		}
		if t.TagType != tag.TypeFood && t.TagType != tag.TypeActivity && t.TagType != tag.TypeDrug {
			return ErrNotLoggable
		}

		var g LogGroup
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"})
		if in.GroupID != nil {
			err := q.Where("id=? AND avatar_id=? AND is_active=?", *in.GroupID, in.AvatarID, true).First(&g).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			if err != nil {
				return err
			}
		} else {
			day := dateOnly(in.LogDate)
			err := q.Where("avatar_id=? AND log_date=? AND is_active=?", in.AvatarID, day, true).
				Order("id").First(&g).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				g = newLogGroup(in.AvatarID, day)
				if err := tx.Create(&g).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			}
		}

		g.bump(t.TagType, 1)
		if err := tx.Model(&LogGroup{}).Where("id=?", g.ID).Updates(map[string]any{
			"food_cnt":   g.FoodCnt,
			"act_cnt":    g.ActCnt,
			"drug_cnt":   g.DrugCnt,
			"updated_at": s.now(),
		}).Error; err != nil {
			return err
		}

		l := TagLog{GroupID: g.ID, TagID: t.ID, XVal: in.XVal, YVal: in.YVal, IsActive: true}
		if err := tx.Create(&l).Error; err != nil {
			return err
		}
		groupID = g.ID

		return s.touchHistory(tx, in.AvatarID, t.ID)
	})
	return groupID, err
}

func (s *Service) touchHistory(tx *gorm.DB, avatarID, tagID uint64) error {
	now := s.now()
	res := tx.Model(&LogHistory{}).
		Where("avatar_id=? AND tag_id=?", avatarID, tagID).
		Updates(map[string]any{"is_active": true, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	h := LogHistory{AvatarID: avatarID, TagID: tagID, IsActive: true, CreatedAt: now, UpdatedAt: now}
	return tx.Create(&h).Error
}

// Groups lists the avatar's active groups inside p, newest day first.
func (s *Service) Groups(ctx context.Context, avatarID uint64, p Period) ([]LogGroup, error) {
	out := []LogGroup{}
	err := p.scope(s.DB.WithContext(ctx).Model(&LogGroup{})).
		Where("avatar_id=? AND is_active=?", avatarID, true).
		Order("log_date desc, id desc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("groups for %d: %w", avatarID, err)
	}
	return out, nil
}

// Group returns one of the avatar's active groups.
func (s *Service) Group(ctx context.Context, avatarID, groupID uint64) (LogGroup, error) {
	var g LogGroup
	err := s.DB.WithContext(ctx).
		Where("id=? AND avatar_id=? AND is_active=?", groupID, avatarID, true).
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return g, ErrGroupNotFound
	}
	return g, err
}

// GroupLogs lists the active tag logs of a group, optionally only those
// whose tag has type t (zero means all).
func (s *Service) GroupLogs(ctx context.Context, avatarID, groupID uint64, t tag.Type) ([]TagLogView, error) {
	if _, err := s.Group(ctx, avatarID, groupID); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Table("tag_logs").
		Select("tag_logs.id, tag_logs.group_id, tag_logs.tag_id, tag_logs.x_val, tag_logs.y_val, "+
			"tags.tag_type, tags.eng_name, tags.kor_name, tags.jpn_name").
		Joins("JOIN tags ON tags.id = tag_logs.tag_id").
		Where("tag_logs.group_id=? AND tag_logs.is_active=?", groupID, true)
	if t != 0 {
		q = q.Where("tags.tag_type=?", t)
	}
	out := []TagLogView{}
	if err := q.Order("tag_logs.id").Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("logs of group %d: %w", groupID, err)
	}
	return out, nil
}

// SetScore records the day's condition score; nil clears it.
func (s *Service) SetScore(ctx context.Context, avatarID, groupID uint64, score *int) error {
	if score != nil && !lifespan.ValidScore(*score) {
		return ErrInvalidScore
	}
	return s.updateGroup(ctx, avatarID, groupID, map[string]any{"cond_score": score})
}

// SetNote replaces the day's note. Blank notes are stored as NULL.
func (s *Service) SetNote(ctx context.Context, avatarID, groupID uint64, note string) error {
	var v *string
	if strings.TrimSpace(note) != "" {
		v = &note
	}
	return s.updateGroup(ctx, avatarID, groupID, map[string]any{"note": v})
}

// RemoveGroup deactivates a group. Its logs stay but no longer count.
func (s *Service) RemoveGroup(ctx context.Context, avatarID, groupID uint64) error {
	return s.updateGroup(ctx, avatarID, groupID, map[string]any{"is_active": false})
}

func (s *Service) updateGroup(ctx context.Context, avatarID, groupID uint64, fields map[string]any) error {
	fields["updated_at"] = s.now()
	res := s.DB.WithContext(ctx).Model(&LogGroup{}).
		Where("id=? AND avatar_id=? AND is_active=?", groupID, avatarID, true).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// RemoveLog deactivates a tag log and decrements its group's counter.
func (s *Service) RemoveLog(ctx context.Context, avatarID, logID uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l TagLog
		if err := tx.Where("id=? AND is_active=?", logID, true).First(&l).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLogNotFound
			}
			return err
		}

		var g LogGroup
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id=? AND avatar_id=?", l.GroupID, avatarID).
			First(&g).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLogNotFound
			}
			return err
		}

		var t tag.Tag
		if err := tx.Where("id=?", l.TagID).First(&t).Error; err != nil {
			return err
		}

		if err := tx.Model(&TagLog{}).Where("id=?", l.ID).Update("is_active", false).Error; err != nil {
			return err
		}
		g.bump(t.TagType, -1)
		return tx.Model(&LogGroup{}).Where("id=?", g.ID).Updates(map[string]any{
			"food_cnt":   g.FoodCnt,
			"act_cnt":    g.ActCnt,
			"drug_cnt":   g.DrugCnt,
			"updated_at": s.now(),
		}).Error
	})
}

// Notes pages through the avatar's groups that carry a note, newest first.
func (s *Service) Notes(ctx context.Context, avatarID uint64, page int) ([]LogGroup, error) {
	out := []LogGroup{}
	err := s.DB.WithContext(ctx).
		Where("avatar_id=? AND is_active=? AND note IS NOT NULL", avatarID, true).
		Order("log_date desc, id desc").
		Scopes(paging.Scope(page, NotesPageSize)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("notes for %d: %w", avatarID, err)
	}
	return out, nil
}

// History lists the tags the avatar logged most recently.
func (s *Service) History(ctx context.Context, avatarID uint64) ([]TagRef, error) {
	out := []TagRef{}
	err := s.DB.WithContext(ctx).Table("log_histories").
		Select("log_histories.id AS ref_id, log_histories.tag_id, tags.tag_type, tags.eng_name, tags.kor_name, tags.jpn_name").
		Joins("JOIN tags ON tags.id = log_histories.tag_id").
		Where("log_histories.avatar_id=? AND log_histories.is_active=? AND tags.is_active=?", avatarID, true, true).
		Order("log_histories.updated_at desc, log_histories.id desc").
		Limit(HistoryLimit).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("history for %d: %w", avatarID, err)
	}
	return out, nil
}

// AverageScore is the mean condition score of the avatar's active groups in
// p. Groups without a score are skipped; nil means no scored group.
func (s *Service) AverageScore(ctx context.Context, avatarID uint64, p Period) (*float64, error) {
	var row struct {
		Avg *float64
	}
	err := p.scope(s.DB.WithContext(ctx).Model(&LogGroup{})).
		Select("AVG(cond_score) AS avg").
		Where("avatar_id=? AND is_active=?", avatarID, true).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("average score for %d: %w", avatarID, err)
	}
	return row.Avg, nil
}

// Comparison is an average next to the average of the period before it.
type Comparison struct {
	This     *float64
	Previous *float64
}

// CompareScore averages p and the period before it.
func (s *Service) CompareScore(ctx context.Context, avatarID uint64, p Period) (Comparison, error) {
	this, err := s.AverageScore(ctx, avatarID, p)
	if err != nil {
		return Comparison{}, err
	}
	prev, err := s.AverageScore(ctx, avatarID, p.Previous())
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{This: this, Previous: prev}, nil
}
