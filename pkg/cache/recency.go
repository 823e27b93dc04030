package cache

import "container/list"

// recencyList orders keys from most recently used (front) to least recently
// used (back). It is not safe for concurrent use; the engine serializes access.
type recencyList struct {
	order *list.List               // front = MRU, back = LRU
	index map[string]*list.Element // key -> position in order
}

func newRecencyList() *recencyList {
	return &recencyList{
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

// touch moves key to the MRU end, inserting it if absent.
func (r *recencyList) touch(key string) {
	if element, ok := r.index[key]; ok {
		r.order.MoveToFront(element)
		return
	}
	r.index[key] = r.order.PushFront(key)
}

func (r *recencyList) remove(key string) {
	element, ok := r.index[key]
	if !ok {
		return
	}
	r.order.Remove(element)
	delete(r.index, key)
}

// evictCandidate returns the LRU key without removing it.
func (r *recencyList) evictCandidate() (string, bool) {
	element := r.order.Back()
	if element == nil {
		return "", false
	}
	return element.Value.(string), true
}

// popEvictCandidate removes and returns the LRU key.
func (r *recencyList) popEvictCandidate() (string, bool) {
	key, ok := r.evictCandidate()
	if ok {
		r.remove(key)
	}
	return key, ok
}

func (r *recencyList) clear() {
	r.order.Init()
	r.index = make(map[string]*list.Element)
}

func (r *recencyList) len() int {
	return r.order.Len()
}

// keys returns keys in MRU -> LRU order.
func (r *recencyList) keys() []string {
	keys := make([]string, 0, r.order.Len())
	for element := r.order.Front(); element != nil; element = element.Next() {
		keys = append(keys, element.Value.(string))
	}
	return keys
}
