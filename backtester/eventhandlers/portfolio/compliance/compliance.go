package compliance

import (
	"fmt"
	"slices"
)

// AddRejection appends to the audit trail. Rejections arrive in time order
func (m *Manager) AddRejection(r *Rejection) error {
	if r == nil || r.Pair == "" || r.Limit == "" {
		return errEmptyRejection
	}
	if n := len(m.Rejections); n > 0 && r.Offset < m.Rejections[n-1].Offset {
		return fmt.Errorf("rejection at offset %d precedes latest %d", r.Offset, m.Rejections[n-1].Offset)
	}
	m.Rejections = append(m.Rejections, *r)
	return nil
}

// GetRejections returns a copy of the audit trail
func (m *Manager) GetRejections() []Rejection {
	return slices.Clone(m.Rejections)
}

// CountByLimit tallies rejections per limit
func (m *Manager) CountByLimit() map[string]int {
	resp := make(map[string]int)
	for i := range m.Rejections {
		resp[m.Rejections[i].Limit]++
	}
	return resp
}
