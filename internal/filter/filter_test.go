package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type contact struct {
	ID    string
	Tags  []string
	Stage string
	City  string
}

func testSet() *Set[contact] {
	return NewSet(
		Dimension[contact]{Name: "tags", Values: func(c contact) []string { return c.Tags }},
		Dimension[contact]{Name: "stage", Values: func(c contact) []string {
			if c.Stage == "" {
				return nil
			}
			return []string{c.Stage}
		}},
		Dimension[contact]{Name: "city", Values: func(c contact) []string {
			if c.City == "" {
				return nil
			}
			return []string{c.City}
		}},
	)
}

var sample = []contact{
	{ID: "a", Tags: []string{"vip", "hot"}, Stage: "new", City: "Lisboa"},
	{ID: "b", Tags: []string{"cold"}, Stage: "qualified", City: "Porto"},
	{ID: "c", Tags: []string{"vip"}, Stage: "qualified", City: "Lisboa"},
	{ID: "d", Stage: "lost"},
	{ID: "e", Tags: []string{"hot"}},
}

func ids(items []contact) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

func TestNoSelectionAcceptsAll(t *testing.T) {
	s := testSet()
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(s.Apply(sample)))
}

func TestOrWithinDimension(t *testing.T) {
	s := testSet()
	s.Select("tags", "vip", "cold")
	// Any selected tag matches any item tag.
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Apply(sample)))
}

func TestAndAcrossDimensions(t *testing.T) {
	s := testSet()
	s.Select("tags", "vip")
	s.Select("stage", "qualified")
	assert.Equal(t, []string{"c"}, ids(s.Apply(sample)))
}

func TestMissingAttributeFailsNonEmptyFilter(t *testing.T) {
	s := testSet()
	s.Select("city", "Lisboa")
	// d and e have no city and must be excluded, not panic.
	assert.Equal(t, []string{"a", "c"}, ids(s.Apply(sample)))
}

func TestClearRestoresFullSet(t *testing.T) {
	s := testSet()
	s.Select("tags", "vip")
	s.Select("city", "Porto")
	assert.NotEqual(t, len(sample), len(s.Apply(sample)))

	s.Clear()
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(s.Apply(sample)))
	assert.False(t, s.Active())
}

func TestClearDimension(t *testing.T) {
	s := testSet()
	s.Select("tags", "vip")
	s.Select("stage", "qualified")
	s.ClearDimension("tags")
	assert.Equal(t, []string{"b", "c"}, ids(s.Apply(sample)))
}

func TestToggle(t *testing.T) {
	s := testSet()
	s.Toggle("tags", "vip")
	assert.True(t, s.Selected("tags", "vip"))
	assert.Equal(t, []string{"a", "c"}, ids(s.Apply(sample)))

	s.Toggle("tags", "vip")
	assert.False(t, s.Selected("tags", "vip"))
	assert.False(t, s.Active())
}

func TestOptionsFromLoadedSetOnly(t *testing.T) {
	s := testSet()
	opts := s.Options(sample[:2])
	assert.Equal(t, []string{"cold", "hot", "vip"}, opts["tags"])
	assert.Equal(t, []string{"new", "qualified"}, opts["stage"])
	assert.Equal(t, []string{"Lisboa", "Porto"}, opts["city"])

	// Paging in more rows widens the menus.
	opts = s.Options(sample)
	assert.Equal(t, []string{"lost", "new", "qualified"}, opts["stage"])
}
