package tag

import (
	"errors"
	"fmt"
)

// MaxDepth is the number of division levels in the taxonomy.
const MaxDepth = 5

var ErrPathFull = errors.New("tag path already at max depth")

// Path is a tag's position in its class: one ordinal per division level,
// filled from the left. A zero ends the path.
type Path [MaxDepth]int

// Depth is the number of set levels. A class root has depth 0.
func (p Path) Depth() int {
	for i, d := range p {
		if d == 0 {
			return i
		}
	}
	return MaxDepth
}

// Valid reports whether no level is set after an unset one.
func (p Path) Valid() bool {
	d := p.Depth()
	for _, v := range p[d:] {
		if v != 0 {
			return false
		}
	}
	return true
}

// Level returns the ordinal at 1-indexed level, 0 when unset or out of range.
func (p Path) Level(level int) int {
	if level < 1 || level > MaxDepth {
		return 0
	}
	return p[level-1]
}

// IsLeaf reports whether every level is set.
func (p Path) IsLeaf() bool { return p.Depth() == MaxDepth }

// Child returns the path one level deeper with ordinal n.
func (p Path) Child(n int) (Path, error) {
	if n <= 0 {
		return p, fmt.Errorf("child ordinal %d: must be positive", n)
	}
	d := p.Depth()
	if d == MaxDepth {
		return p, ErrPathFull
	}
	p[d] = n
	return p, nil
}

// HasPrefix reports whether p lies at or below prefix.
func (p Path) HasPrefix(prefix Path) bool {
	for i := 0; i < prefix.Depth(); i++ {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	return fmt.Sprintf("%d.%d.%d.%d.%d", p[0], p[1], p[2], p[3], p[4])
}
