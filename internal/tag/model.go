package tag

import "time"

// Type is the kind of thing a tag names.
type Type int

const (
	TypeActivity  Type = 7
	TypeCondition Type = 8
	TypeDrug      Type = 9
	TypeFood      Type = 10
	TypeCharacter Type = 11
	TypeCategory  Type = 12
	TypeBookmark  Type = 13
	TypeDiary     Type = 14
	TypeHistory   Type = 15
)

// Loggable reports whether tags of this type can be logged or bookmarked.
func (t Type) Loggable() bool {
	switch t {
	case TypeActivity, TypeCondition, TypeDrug, TypeFood:
		return true
	}
	return false
}

// Class is the taxonomy a tag's division path is numbered in.
type Class int

const (
	ClassNone       Class = 0
	ClassFood       Class = 1
	ClassActivity   Class = 2
	ClassCondition  Class = 3
	ClassDrug       Class = 4
	ClassDrugATC    Class = 5
	ClassDrugUS     Class = 6
	ClassDrugKR     Class = 7
	ClassSupplement Class = 8
)

// DrugClasses are the leaf encodings the drug root fans out into.
var DrugClasses = []Class{ClassDrugATC, ClassDrugUS, ClassDrugKR, ClassSupplement}

// SupplementsDivision is the food division1 holding supplements; they are
// searched as drugs instead.
const SupplementsDivision = 20

type Tag struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	TagType   Type   `gorm:"index;not null" json:"tag_type"`
	EngName   string `gorm:"not null;default:''" json:"eng_name"`
	KorName   string `gorm:"not null;default:''" json:"kor_name"`
	JpnName   string `gorm:"not null;default:''" json:"jpn_name"`
	Class1    Class  `gorm:"column:class1;index;not null;default:0" json:"class1"`
	Division1 int    `gorm:"column:division1;not null;default:0" json:"division1"`
	Division2 int    `gorm:"column:division2;not null;default:0" json:"division2"`
	Division3 int    `gorm:"column:division3;not null;default:0" json:"division3"`
	Division4 int    `gorm:"column:division4;not null;default:0" json:"division4"`
	Division5 int    `gorm:"column:division5;not null;default:0" json:"division5"`
	IsActive  bool   `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Path returns the tag's division fields as a Path.
func (t Tag) Path() Path {
	return Path{t.Division1, t.Division2, t.Division3, t.Division4, t.Division5}
}

// SetPath copies p into the division fields.
func (t *Tag) SetPath(p Path) {
	t.Division1, t.Division2, t.Division3, t.Division4, t.Division5 = p[0], p[1], p[2], p[3], p[4]
}

// TagSet is a super → sub edge of the tag tree.
type TagSet struct {
	ID       uint64 `gorm:"primaryKey"`
	SuperID  uint64 `gorm:"index;not null"`
	SubID    uint64 `gorm:"index;not null"`
	Priority int    `gorm:"not null;default:0"`
	IsActive bool   `gorm:"not null"`

	CreatedAt time.Time
}
