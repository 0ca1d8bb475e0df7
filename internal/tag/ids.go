package tag

// Well-known tags seeded by the reference-data migration.
const (
	IDFood      uint64 = 1
	IDActivity  uint64 = 2
	IDDrug      uint64 = 3
	IDCondition uint64 = 4
	IDBookmark  uint64 = 5
	IDHistory   uint64 = 6

	IDBookmarkFood      uint64 = 14
	IDBookmarkActivity  uint64 = 15
	IDBookmarkDrug      uint64 = 16
	IDBookmarkCondition uint64 = 17

	// IDUnselected groups the "not specified" option of each profile category.
	IDUnselected uint64 = 19

	IDProfile  uint64 = 20
	IDLanguage uint64 = 21
	IDTheme    uint64 = 22
	IDGender   uint64 = 23

	IDEnglish  uint64 = 24
	IDKorean   uint64 = 25
	IDJapanese uint64 = 26
	IDLight    uint64 = 27
	IDDark     uint64 = 28
)

// BookmarkSuper returns the bookmark super tag collecting tags of type t.
func BookmarkSuper(t Type) (uint64, bool) {
	switch t {
	case TypeFood:
		return IDBookmarkFood, true
	case TypeActivity:
		return IDBookmarkActivity, true
	case TypeDrug:
		return IDBookmarkDrug, true
	case TypeCondition:
		return IDBookmarkCondition, true
	}
	return 0, false
}

// IsBookmarkSuper reports whether id is one of the per-type bookmark supers.
func IsBookmarkSuper(id uint64) bool {
	switch id {
	case IDBookmarkFood, IDBookmarkActivity, IDBookmarkDrug, IDBookmarkCondition:
		return true
	}
	return false
}
