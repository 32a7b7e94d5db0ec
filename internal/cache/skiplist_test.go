package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intCompare(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func reverseIntCompare(a, b int) int {
	if a > b {
		return -1
	}
	if a < b {
		return 1
	}
	return 0
}

func TestSkipList_Insert(t *testing.T) {
	sl := NewSkipList[int, string](intCompare)

	inserted := sl.Insert(100, "user1")
	assert.True(t, inserted)
	assert.Equal(t, 1, sl.GetLength())

	rank, exists := sl.GetRank(100)
	assert.True(t, exists)
	assert.Equal(t, 1, rank)

	value, found := sl.Search(100)
	assert.True(t, found)
	assert.Equal(t, "user1", value)

	// Inserting an existing key only rebinds the value
	inserted = sl.Insert(100, "user1-again")
	assert.False(t, inserted)
	assert.Equal(t, 1, sl.GetLength())

	value, found = sl.Search(100)
	assert.True(t, found)
	assert.Equal(t, "user1-again", value)

	sl.Insert(75, "user2")
	sl.Insert(25, "user3")

	assert.Equal(t, 3, sl.GetLength())

	rank1, exists1 := sl.GetRank(25)
	assert.True(t, exists1)
	assert.Equal(t, 1, rank1)

	rank2, exists2 := sl.GetRank(75)
	assert.True(t, exists2)
	assert.Equal(t, 2, rank2)

	rank3, exists3 := sl.GetRank(100)
	assert.True(t, exists3)
	assert.Equal(t, 3, rank3)
}

func TestSkipList_Delete(t *testing.T) {
	sl := NewSkipList[int, string](intCompare)

	sl.Insert(100, "user1")
	sl.Insert(200, "user2")
	sl.Insert(50, "user3")

	assert.Equal(t, 3, sl.GetLength())

	deleted := sl.Delete(100)
	assert.True(t, deleted)
	assert.Equal(t, 2, sl.GetLength())

	_, exists := sl.Search(100)
	assert.False(t, exists)

	deleted = sl.Delete(999)
	assert.False(t, deleted)
	assert.Equal(t, 2, sl.GetLength())

	// Ranks contract after a delete
	rank, found := sl.GetRank(50)
	assert.True(t, found)
	assert.Equal(t, 1, rank)

	rank, found = sl.GetRank(200)
	assert.True(t, found)
	assert.Equal(t, 2, rank)
}

func TestSkipList_GetTopK(t *testing.T) {
	sl := NewSkipList[int, string](intCompare)

	sl.Insert(100, "user1")
	sl.Insert(300, "user2")
	sl.Insert(200, "user3")
	sl.Insert(50, "user4")

	topK := sl.GetTopK(2)
	assert.Equal(t, 2, len(topK))
	assert.Equal(t, 50, topK[0].Key)
	assert.Equal(t, "user4", topK[0].Value)
	assert.Equal(t, 1, topK[0].Rank)
	assert.Equal(t, 100, topK[1].Key)
	assert.Equal(t, "user1", topK[1].Value)
	assert.Equal(t, 2, topK[1].Rank)

	topAll := sl.GetTopK(10)
	assert.Equal(t, 4, len(topAll))

	assert.Empty(t, sl.GetTopK(0))
	assert.Empty(t, sl.GetTopK(-3))
}

func TestSkipList_ReverseOrder(t *testing.T) {
	sl := NewSkipList[int, string](reverseIntCompare)

	sl.Insert(100, "user1")
	sl.Insert(300, "user2")
	sl.Insert(200, "user3")
	sl.Insert(50, "user4")

	topK := sl.GetTopK(2)
	assert.Equal(t, 2, len(topK))
	assert.Equal(t, 300, topK[0].Key)
	assert.Equal(t, "user2", topK[0].Value)
	assert.Equal(t, 1, topK[0].Rank)
	assert.Equal(t, 200, topK[1].Key)
	assert.Equal(t, "user3", topK[1].Value)
	assert.Equal(t, 2, topK[1].Rank)
}

func TestSkipList_Contains(t *testing.T) {
	sl := NewSkipList[int, string](intCompare)

	assert.False(t, sl.Contains(100))

	sl.Insert(100, "user1")
	assert.True(t, sl.Contains(100))

	sl.Delete(100)
	assert.False(t, sl.Contains(100))
}

func TestSkipList_IsEmpty(t *testing.T) {
	sl := NewSkipList[int, string](intCompare)

	assert.True(t, sl.IsEmpty())

	sl.Insert(100, "user1")
	assert.False(t, sl.IsEmpty())

	sl.Delete(100)
	assert.True(t, sl.IsEmpty())
}

func TestSkipList_Clear(t *testing.T) {
	sl := NewSkipList[int, string](intCompare)

	sl.Insert(100, "user1")
	sl.Insert(200, "user2")
	sl.Insert(300, "user3")

	assert.Equal(t, 3, sl.GetLength())

	sl.Clear()

	assert.Equal(t, 0, sl.GetLength())
	assert.True(t, sl.IsEmpty())
	assert.False(t, sl.Contains(100))
}

func TestSkipList_GetAll(t *testing.T) {
	sl := NewSkipList[int, string](intCompare)

	sl.Insert(300, "user3")
	sl.Insert(100, "user1")
	sl.Insert(200, "user2")

	all := sl.GetAll()
	assert.Equal(t, 3, len(all))

	assert.Equal(t, 100, all[0].Key)
	assert.Equal(t, 1, all[0].Rank)
	assert.Equal(t, 200, all[1].Key)
	assert.Equal(t, 2, all[1].Rank)
	assert.Equal(t, 300, all[2].Key)
	assert.Equal(t, 3, all[2].Rank)
}

func TestSkipList_GetRank(t *testing.T) {
	sl := NewSkipList[int, int](reverseIntCompare)

	// Insert values in random order
	values := []int{50, 100, 25, 75, 10, 90, 30}
	for i, val := range values {
		sl.Insert(val, i)
	}

	// Sorted order should be: 100, 90, 75, 50, 30, 25, 10
	expected := map[int]int{100: 1, 90: 2, 75: 3, 50: 4, 30: 5, 25: 6, 10: 7}
	for key, want := range expected {
		rank, found := sl.GetRank(key)
		assert.True(t, found)
		assert.Equal(t, want, rank, "rank of %d", key)
	}

	rank, found := sl.GetRank(999)
	assert.False(t, found)
	assert.Equal(t, 0, rank)
}

func TestSkipList_RankStaysConsistentUnderChurn(t *testing.T) {
	sl := NewSkipList[int, int](intCompare)

	for i := 1; i <= 512; i++ {
		sl.Insert(i, i)
	}
	// Delete every even key, ranks of the survivors must collapse cleanly
	for i := 2; i <= 512; i += 2 {
		assert.True(t, sl.Delete(i))
	}

	assert.Equal(t, 256, sl.GetLength())
	for i := 1; i <= 511; i += 2 {
		rank, found := sl.GetRank(i)
		assert.True(t, found)
		assert.Equal(t, (i+1)/2, rank, "rank of %d", i)
	}

	all := sl.GetAll()
	for i, entry := range all {
		assert.Equal(t, i+1, entry.Rank)
	}
}
