package eventtype

import (
	"strings"
	"sync"
)

// Resolve maps eventType to a Descriptor. It never fails: unknown or blank
// input gets the neutral default. The returned Label is always eventType as given.
//
// Matching runs in order: exact keyword, then substring in either direction
// over keywords longest first, then whole words split on whitespace, hyphen
// and underscore.
func Resolve(eventType string) Descriptor {
	normalized := strings.ToLower(strings.TrimSpace(eventType))
	if normalized == "" {
		return Default(eventType)
	}

	if s, ok := dictionary[normalized]; ok {
		return s.descriptor(eventType)
	}

	for _, key := range keysByLength {
		if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
			return dictionary[key].descriptor(eventType)
		}
	}

	// Any whole word equal to a keyword is also a substring of normalized, so
	// the loop above has already matched it. This step only holds if the
	// substring rule is narrowed.
	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_'
	})
	for _, w := range words {
		if s, ok := dictionary[w]; ok {
			return s.descriptor(eventType)
		}
	}

	return Default(eventType)
}

// DefaultMemoSize bounds the number of inputs a Resolver remembers.
const DefaultMemoSize = 1024

// Resolver memoizes Resolve by input string. The memo is dropped wholesale
// when it reaches its size bound. A Resolver is safe for concurrent use.
type Resolver struct {
	mu    sync.Mutex
	memo  map[string]Descriptor
	limit int
}

// NewResolver returns a Resolver remembering at most limit inputs.
// A non-positive limit uses DefaultMemoSize.
func NewResolver(limit int) *Resolver {
	if limit <= 0 {
		limit = DefaultMemoSize
	}
	return &Resolver{memo: make(map[string]Descriptor), limit: limit}
}

// Resolve returns the memoized descriptor for eventType, computing it on a miss.
func (r *Resolver) Resolve(eventType string) Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.memo[eventType]; ok {
		return d
	}

	d := Resolve(eventType)
	if len(r.memo) >= r.limit {
		r.memo = make(map[string]Descriptor)
	}
	r.memo[eventType] = d
	return d
}

// Len returns the number of memoized inputs.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.memo)
}
