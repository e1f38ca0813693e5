package stockroom

import (
	"errors"
	"fmt"
	"testing"
)

// TestCacheBasicOperations tests the basic operations of the SimpleCache
func TestCacheBasicOperations(t *testing.T) {
	const capacity = 10
	cache := FactoryNewCache[string](capacity)

	items := []string{"item1", "item2", "item3", "item4", "item5"}
	indices := make([]int, len(items))

	for i, item := range items {
		index, err := cache.Register(item, item)
		if err != nil {
			t.Errorf("Failed to register item %s: %v", item, err)
		}
		indices[i] = index

		// Verify index starts at 0 and increments
		if index != i {
			t.Errorf("Index for item %s is %d, expected %d", item, index, i)
		}
	}

	for i, item := range items {
		index, found := cache.GetIndex(item)
		if !found {
			t.Errorf("Item %s not found in cache", item)
		}
		if index != indices[i] {
			t.Errorf("Index for item %s is %d, expected %d", item, index, indices[i])
		}
	}

	for i, item := range items {
		if cachedItem := *cache.GetItem(indices[i]); cachedItem != item {
			t.Errorf("Item at index %d is %s, expected %s", indices[i], cachedItem, item)
		}
		if cachedItem := *cache.GetItem32(uint32(indices[i])); cachedItem != item {
			t.Errorf("Item at index %d is %s, expected %s", indices[i], cachedItem, item)
		}
	}

	if _, found := cache.GetIndex("nonexistent"); found {
		t.Errorf("Found non-existent item in cache")
	}
	if _, found := cache.Lookup("nonexistent"); found {
		t.Errorf("Lookup found non-existent item in cache")
	}
	if got := cache.Keys(); fmt.Sprint(got) != fmt.Sprint(items) {
		t.Errorf("Keys() = %v, want %v", got, items)
	}
}

// TestCacheCapacity tests the cache capacity limits
func TestCacheCapacity(t *testing.T) {
	const capacity = 5
	cache := FactoryNewCache[int](capacity)

	for i := 1; i <= capacity; i++ {
		key := fmt.Sprintf("item%d", i)
		if _, err := cache.Register(key, i); err != nil {
			t.Errorf("Failed to register item %s: %v", key, err)
		}
	}

	_, err := cache.Register("overflow", 100)
	var full CacheFullError
	if !errors.As(err, &full) {
		t.Errorf("Expected CacheFullError when exceeding cache capacity, got %v", err)
	}
}

// TestCacheDuplicateKey tests that a key can only be registered once
func TestCacheDuplicateKey(t *testing.T) {
	cache := FactoryNewCache[int](5)
	if _, err := cache.Register("stage", 1); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	_, err := cache.Register("stage", 2)
	var exists CacheKeyExistsError
	if !errors.As(err, &exists) {
		t.Errorf("Expected CacheKeyExistsError, got %v", err)
	}
	if item, _ := cache.Lookup("stage"); *item != 1 {
		t.Errorf("Duplicate registration overwrote the item: %d", *item)
	}
}

// TestCacheClear tests the cache clear functionality
func TestCacheClear(t *testing.T) {
	cache := FactoryNewCache[string](10).(*SimpleCache[string])

	items := []string{"item1", "item2", "item3"}
	for _, item := range items {
		if _, err := cache.Register(item, item); err != nil {
			t.Errorf("Failed to register item %s: %v", item, err)
		}
	}

	cache.Clear()

	for _, item := range items {
		if _, found := cache.GetIndex(item); found {
			t.Errorf("Item %s still found after cache clear", item)
		}
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d after clear", cache.Len())
	}

	for _, item := range items {
		if _, err := cache.Register(item, item); err != nil {
			t.Errorf("Failed to register item %s after clear: %v", item, err)
		}
	}
}

// TestCacheWithComplexTypes tests the cache with more complex data types
func TestCacheWithComplexTypes(t *testing.T) {
	cache := FactoryNewCache[Position](10)

	positions := []Position{
		{X: 1.0, Y: 2.0},
		{X: 3.0, Y: 4.0},
		{X: 5.0, Y: 6.0},
	}
	keys := []string{"pos1", "pos2", "pos3"}

	for i, pos := range positions {
		if _, err := cache.Register(keys[i], pos); err != nil {
			t.Errorf("Failed to register position %v: %v", pos, err)
		}
	}

	for i, key := range keys {
		pos, found := cache.Lookup(key)
		if !found {
			t.Errorf("Position with key %s not found", key)
			continue
		}
		if *pos != positions[i] {
			t.Errorf("Position for key %s is %v, expected %v", key, *pos, positions[i])
		}
	}
}
