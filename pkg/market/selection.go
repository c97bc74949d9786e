package market

import "fmt"

// SelectionSize is the number of chart slots on the dashboard.
const SelectionSize = 4

// Selection is the ordered set of instruments shown in the chart slots.
// No key appears twice.
type Selection struct {
	registry *Registry
	keys     [SelectionSize]string
}

// NewSelection returns the default selection: the first four registry entries.
func NewSelection(r *Registry) (*Selection, error) {
	if r.Len() < SelectionSize {
		return nil, fmt.Errorf("market: registry %q has %d instruments, need %d", r.Market(), r.Len(), SelectionSize)
	}
	s := &Selection{registry: r}
	copy(s.keys[:], r.Keys()[:SelectionSize])
	return s, nil
}

// Keys returns the selected keys in slot order.
func (s *Selection) Keys() []string {
	out := make([]string, SelectionSize)
	copy(out, s.keys[:])
	return out
}

// Contains reports whether key occupies any slot.
func (s *Selection) Contains(key string) bool {
	return s.slotOf(key) >= 0
}

// Assign places key into slot. If key already sits in another slot the two
// slots swap values, so the selection never holds duplicates.
func (s *Selection) Assign(slot int, key string) error {
	if slot < 0 || slot >= SelectionSize {
		return fmt.Errorf("market: slot %d out of range [0,%d)", slot, SelectionSize)
	}
	if !s.registry.Contains(key) {
		return fmt.Errorf("market: %q is not an instrument of %s", key, s.registry.Market())
	}
	if other := s.slotOf(key); other >= 0 {
		s.keys[slot], s.keys[other] = s.keys[other], s.keys[slot]
		return nil
	}
	s.keys[slot] = key
	return nil
}

func (s *Selection) slotOf(key string) int {
	for i, k := range s.keys {
		if k == key {
			return i
		}
	}
	return -1
}
