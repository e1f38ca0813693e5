package stockroom

var _ Cache[any] = &SimpleCache[any]{}

func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[T]) GetItem(index int) *T {
	item := &c.items[index]
	return item
}

func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	item := &c.items[index]
	return item
}

// Lookup returns the item registered under key.
func (c *SimpleCache[T]) Lookup(key string) (*T, bool) {
	index, ok := c.itemIndices[key]
	if !ok {
		return nil, false
	}
	return &c.items[index], true
}

// Keys returns the registered keys in registration order.
func (c *SimpleCache[T]) Keys() []string {
	return c.keys
}

func (c *SimpleCache[T]) Len() int {
	return len(c.items)
}

// Register stores item under a new key and returns its index.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if _, ok := c.itemIndices[key]; ok {
		return -1, CacheKeyExistsError{Key: key}
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, CacheFullError{Capacity: c.maxCapacity}
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	c.keys = append(c.keys, key)

	return idx, nil
}

func (c *SimpleCache[T]) Clear() {
	c.items = c.items[:0]
	c.keys = c.keys[:0]
	c.itemIndices = make(map[string]int)
}
