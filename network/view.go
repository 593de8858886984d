package network

// Point is a node position in a view.
type Point struct {
	X, Y float64
}

// View is a rendered presentation of one network.
type View interface {
	Network() Network
	Position(node SUID) (Point, bool)
	SetPosition(node SUID, p Point)
}

// ViewProvider returns the live view of a network, if any.
type ViewProvider interface {
	ViewFor(net Network) (View, bool)
}

// Layouter arranges nodes of a view.
type Layouter interface {
	GridLayout(view View, nodes []SUID, hSpacing, vSpacing float64) error
}
