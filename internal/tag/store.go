package tag

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"dymm/internal/paging"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("tag not found")
var ErrInvalidSort = errors.New("invalid sort")

// DefaultPageSize is the page size of child listings and searches.
const DefaultPageSize = 40

// Sort orders a child listing.
type Sort string

const (
	SortEng      Sort = "eng"
	SortKor      Sort = "kor"
	SortJpn      Sort = "jpn"
	SortPriority Sort = "priority"
	SortDiv      Sort = "div"
)

// ParseSort validates a sort key from a request path.
func ParseSort(s string) (Sort, error) {
	switch v := Sort(strings.ToLower(strings.TrimSpace(s))); v {
	case SortEng, SortKor, SortJpn, SortPriority, SortDiv:
		return v, nil
	}
	return "", ErrInvalidSort
}

func (s Sort) orderBy() (string, error) {
	switch s {
	case SortEng:
		return "tags.eng_name, tags.id", nil
	case SortKor:
		return "tags.kor_name, tags.id", nil
	case SortJpn:
		return "tags.jpn_name, tags.id", nil
	case SortPriority:
		return "tag_sets.priority desc, tags.id", nil
	case SortDiv:
		return "tags.class1, tags.division1, tags.division2, tags.division3, tags.division4, tags.division5, tags.id", nil
	}
	return "", ErrInvalidSort
}

var koreanRe = regexp.MustCompile(`^[ㄱ-ㅎㅏ-ㅣ가-힣]`)

// IsKorean reports whether the keyword starts with a Hangul character.
func IsKorean(keyword string) bool {
	return koreanRe.MatchString(norm.NFC.String(keyword))
}

type Store struct {
	DB *gorm.DB
}

func (s *Store) Get(ctx context.Context, id uint64) (*Tag, error) {
	var t Tag
	if err := s.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Children lists the active sub tags of superID. page 0 returns every child;
// otherwise page is 1-indexed over DefaultPageSize rows.
func (s *Store) Children(ctx context.Context, superID uint64, sort Sort, page int) ([]Tag, error) {
	order, err := sort.orderBy()
	if err != nil {
		return nil, err
	}

	q := s.childQuery(ctx, superID).Order(order)
	if page > 0 {
		q = q.Scopes(paging.Scope(page, DefaultPageSize))
	}

	var out []Tag
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list children of %d: %w", superID, err)
	}
	return out, nil
}

// ChildrenWithIndex lists superID's children by priority and reports the
// position of matchID among them (0 when absent).
func (s *Store) ChildrenWithIndex(ctx context.Context, superID, matchID uint64) ([]Tag, int, error) {
	tags, err := s.Children(ctx, superID, SortPriority, 0)
	if err != nil {
		return nil, 0, err
	}
	for i, t := range tags {
		if t.ID == matchID {
			return tags, i, nil
		}
	}
	return tags, 0, nil
}

// SuperOf returns the first active super tag of subID.
func (s *Store) SuperOf(ctx context.Context, subID uint64) (*Tag, error) {
	var t Tag
	err := s.DB.WithContext(ctx).Model(&Tag{}).
		Select("tags.*").
		Joins("JOIN tag_sets ON tag_sets.super_id = tags.id").
		Where("tag_sets.sub_id = ? AND tag_sets.is_active = ?", subID, true).
		Order("tag_sets.id").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// HasChild reports whether an active edge superID → subID exists.
func (s *Store) HasChild(ctx context.Context, superID, subID uint64) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&TagSet{}).
		Where("super_id = ? AND sub_id = ? AND is_active = ?", superID, subID, true).
		Count(&n).Error
	return n > 0, err
}

// SearchDescendants finds tags exactly one level below super whose name
// contains keyword. Hangul keywords match kor_name, others eng_name.
func (s *Store) SearchDescendants(ctx context.Context, super Tag, keyword string, page int) ([]Tag, error) {
	path := super.Path()
	depth := path.Depth()
	if depth == MaxDepth {
		return []Tag{}, nil
	}

	keyword = norm.NFC.String(strings.TrimSpace(keyword))
	column := "eng_name"
	if IsKorean(keyword) {
		column = "kor_name"
	}

	q := s.DB.WithContext(ctx).Model(&Tag{}).Where("is_active = ?", true)

	if super.Class1 == ClassDrug && depth == 0 {
		q = q.Where("class1 IN ?", DrugClasses)
	} else {
		q = q.Where("class1 = ?", super.Class1)
	}
	if super.Class1 == ClassFood && depth == 0 {
		q = q.Where("division1 <> ?", SupplementsDivision)
	}

	for level := 1; level <= MaxDepth; level++ {
		col := fmt.Sprintf("division%d", level)
		switch {
		case level <= depth:
			q = q.Where(col+" = ?", path.Level(level))
		case level == depth+1:
			q = q.Where(col + " <> 0")
		default:
			q = q.Where(col + " = 0")
		}
	}

	q = q.Where(fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column), "%"+escapeLike(strings.ToLower(keyword))+"%")

	var out []Tag
	err := q.Order("class1, division1, division2, division3, division4, division5, id").
		Scopes(paging.Scope(page, DefaultPageSize)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search below %d: %w", super.ID, err)
	}
	return out, nil
}

func (s *Store) childQuery(ctx context.Context, superID uint64) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&Tag{}).
		Select("tags.*").
		Joins("JOIN tag_sets ON tag_sets.sub_id = tags.id").
		Where("tag_sets.super_id = ? AND tag_sets.is_active = ? AND tags.is_active = ?", superID, true, true)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
