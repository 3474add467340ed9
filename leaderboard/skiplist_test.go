package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipListOrderAndMove(t *testing.T) {
	s := NewSkipList()
	s.Update("a", 10)
	s.Update("b", 20)
	s.Update("c", 15)

	top := s.Page(0, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{top[0].Username, top[1].Username, top[2].Username})

	s.Update("a", 25)
	top = s.Page(0, 1)
	assert.Equal(t, "a", top[0].Username)
	assert.Equal(t, 3, s.Len())
}

func TestSkipListDenseRank(t *testing.T) {
	s := NewSeededSkipList(1)
	s.Update("amy", 500)
	s.Update("bob", 500)
	s.Update("cat", 400)
	s.Update("dan", 300)

	page := s.Page(0, 10)
	require.Len(t, page, 4)
	assert.Equal(t, 1, page[0].Rank)
	assert.Equal(t, 1, page[1].Rank)
	assert.Equal(t, 2, page[2].Rank)
	assert.Equal(t, 3, page[3].Rank)
}

func TestSkipListPageWindow(t *testing.T) {
	s := NewSeededSkipList(2)
	for i := 0; i < 10; i++ {
		s.Update(string(rune('a'+i)), 100-i)
	}
	page := s.Page(4, 3)
	require.Len(t, page, 3)
	assert.Equal(t, "e", page[0].Username)
	assert.Equal(t, 5, page[0].Rank)

	assert.Empty(t, s.Page(10, 5))
	assert.Len(t, s.Page(8, 5), 2)
	assert.Empty(t, s.Page(0, 0))
}

func TestSkipListSearchKeepsGlobalRank(t *testing.T) {
	s := NewSeededSkipList(3)
	s.Update("Anna_Smith1", 4000)
	s.Update("zoe_kumar2", 4500)
	s.Update("joanna_das3", 3000)

	res := s.Search("ANN", 10)
	require.Len(t, res, 2)
	assert.Equal(t, "Anna_Smith1", res[0].Username)
	assert.Equal(t, 2, res[0].Rank)
	assert.Equal(t, "joanna_das3", res[1].Username)
	assert.Equal(t, 3, res[1].Rank)

	assert.Len(t, s.Search("a", 1), 1)
	assert.Empty(t, s.Search("   ", 10))
}

func TestSkipListGetAndRemove(t *testing.T) {
	s := NewSkipList()
	s.Update("x", 10)
	s.Update("y", 20)

	e, ok := s.Get("x")
	require.True(t, ok)
	assert.Equal(t, 2, e.Rank)

	s.Remove("y")
	e, ok = s.Get("x")
	require.True(t, ok)
	assert.Equal(t, 1, e.Rank)

	_, ok = s.Get("y")
	assert.False(t, ok)
	assert.Equal(t, []string{"x"}, s.Usernames())
}
