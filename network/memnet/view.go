package memnet

import (
	"fmt"
	"math"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
)

// View keeps node positions for one network.
type View struct {
	net       *Network
	positions map[network.SUID]network.Point
}

// Network implements network.View.
func (v *View) Network() network.Network { return v.net }

// Position implements network.View.
func (v *View) Position(node network.SUID) (network.Point, bool) {
	p, ok := v.positions[node]
	return p, ok
}

// SetPosition implements network.View.
func (v *View) SetPosition(node network.SUID, p network.Point) {
	v.positions[node] = p
}

// CreateView returns the view of net, creating it on first call.
func (s *Session) CreateView(net network.Network) (*View, error) {
	n, err := s.own(net, "CreateView")
	if err != nil {
		return nil, err
	}
	if v, ok := s.views[n.suid]; ok {
		return v, nil
	}
	v := &View{net: n, positions: make(map[network.SUID]network.Point)}
	s.views[n.suid] = v
	return v, nil
}

// ViewFor implements network.ViewProvider.
func (s *Session) ViewFor(net network.Network) (network.View, bool) {
	v, ok := s.views[net.SUID()]
	if !ok {
		return nil, false
	}
	return v, true
}

// GridLayouter places nodes on a square grid anchored at the top-left of their current
// positions.
type GridLayouter struct{}

// GridLayout implements network.Layouter.
func (GridLayouter) GridLayout(view network.View, nodes []network.SUID, hSpacing, vSpacing float64) error {
	if view == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "GridLayouter", "GridLayout", "view check")
	}
	if hSpacing <= 0 || vSpacing <= 0 {
		return errors.WrapInvalid(fmt.Errorf("%w: spacing %.1fx%.1f", errors.ErrInvalidData, hSpacing, vSpacing),
			"GridLayouter", "GridLayout", "spacing check")
	}
	if len(nodes) == 0 {
		return nil
	}

	var origin network.Point
	found := false
	for _, node := range nodes {
		p, ok := view.Position(node)
		if !ok {
			continue
		}
		if !found {
			origin, found = p, true
			continue
		}
		origin.X = math.Min(origin.X, p.X)
		origin.Y = math.Min(origin.Y, p.Y)
	}

	columns := int(math.Ceil(math.Sqrt(float64(len(nodes)))))
	for i, node := range nodes {
		view.SetPosition(node, network.Point{
			X: origin.X + float64(i%columns)*hSpacing,
			Y: origin.Y + float64(i/columns)*vSpacing,
		})
	}
	return nil
}
