package matcher

import (
	"sort"
	"strings"

	"github.com/matchingram/matchingram/schema"
)

// Match evaluates the rule against one message view: true when some
// group's conditions all hold. Groups and conditions run in source
// order and short-circuit, so a lazy view computes only what the
// verdict needs. Match never fails and allocates nothing.
func (m *Matcher) Match(view View) bool {
	for _, g := range m.groups {
		if g.match(view) {
			return true
		}
	}
	return false
}

func (g condGroup) match(view View) bool {
	for i := range g {
		if !g[i].eval(view) {
			return false
		}
	}
	return true
}

func (c *cond) eval(view View) bool {
	fv := view.Get(c.field)
	if c.op == schema.OpNone {
		return c.negated != fv.truthy()
	}
	// An absent field fails an operated condition outright; negation is
	// not applied, so `not x eq v` cannot match messages lacking x.
	if fv.kind == fvNone {
		return false
	}
	return c.negated != c.apply(fv)
}

func (c *cond) apply(fv FieldValue) bool {
	switch c.op {
	case schema.OpEq:
		if fv.kind == fvStr {
			return fv.s == c.str
		}
		return c.numCompare(fv) == 0

	case schema.OpGt:
		return fv.kind != fvStr && c.numCompare(fv) > 0
	case schema.OpGe:
		return fv.kind != fvStr && c.numCompare(fv) >= 0
	case schema.OpLe:
		return fv.kind != fvStr && c.numCompare(fv) <= 0

	case schema.OpIn:
		if fv.kind == fvStr {
			i := sort.SearchStrings(c.strs, fv.s)
			return i < len(c.strs) && c.strs[i] == fv.s
		}
		return c.numMember(fv)

	case schema.OpAny:
		if fv.kind != fvStr {
			return false
		}
		return c.anyMatch(fv.s)

	case schema.OpAll:
		if fv.kind != fvStr {
			return false
		}
		for _, p := range c.strs {
			if !strings.Contains(fv.s, p) {
				return false
			}
		}
		return true

	case schema.OpHd:
		if fv.kind != fvStr {
			return false
		}
		for _, p := range c.strs {
			if strings.HasPrefix(fv.s, p) {
				return true
			}
		}
		return false

	default:
		// Unreachable on any rule produced by Compile.
		panic("matcher: invalid operator id")
	}
}

// numCompare is a three-way comparison of the field value against the
// condition's scalar. Int against Int compares exactly; a Float on
// either side compares as float64.
func (c *cond) numCompare(fv FieldValue) int {
	if fv.kind == fvInt && c.numIsInt {
		switch {
		case fv.i < c.numI:
			return -1
		case fv.i > c.numI:
			return 1
		default:
			return 0
		}
	}
	a, b := fv.asFloat(), c.num
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (c *cond) numMember(fv FieldValue) bool {
	if fv.kind == fvInt {
		i := sort.Search(len(c.ints), func(k int) bool { return c.ints[k] >= fv.i })
		if i < len(c.ints) && c.ints[i] == fv.i {
			return true
		}
	}
	f := fv.asFloat()
	i := sort.SearchFloat64s(c.nums, f)
	return i < len(c.nums) && c.nums[i] == f
}

func (c *cond) anyMatch(s string) bool {
	if c.ac != nil {
		iter := c.ac.Iter(s)
		return iter.Next() != nil
	}
	for _, p := range c.strs {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
