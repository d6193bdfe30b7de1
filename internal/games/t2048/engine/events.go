package engine

// EventKind identifies a change notification.
type EventKind uint8

const (
	EventTileCreated EventKind = iota
	EventTileMoved
	EventTileMerged
	EventTileRemoved
	EventGameOver
	EventGameReset
)

func (k EventKind) String() string {
	switch k {
	case EventTileCreated:
		return "tile_created"
	case EventTileMoved:
		return "tile_moved"
	case EventTileMerged:
		return "tile_merged"
	case EventTileRemoved:
		return "tile_removed"
	case EventGameOver:
		return "game_over"
	case EventGameReset:
		return "game_reset"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event describes one change to the grid.
//
//	TileCreated: TileID/Value placed at To
//	TileMoved:   TileID slid From -> To
//	TileMerged:  AbsorbedID slid From -> To and merged into TileID, now Value
//	TileRemoved: TileID (an absorbed tile) left the grid
//	GameOver, GameReset: no tile fields
type Event struct {
	Kind       EventKind `json:"kind"`
	TileID     uint64    `json:"tile_id,omitempty"`
	AbsorbedID uint64    `json:"absorbed_id,omitempty"`
	Value      int       `json:"value,omitempty"`
	From       Location  `json:"from"`
	To         Location  `json:"to"`
}

// Listener receives grid change notifications.
type Listener interface {
	OnEvent(e Event)
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(e Event)

// OnEvent calls f(e).
func (f ListenerFunc) OnEvent(e Event) {
	f(e)
}

// MultiListener fans every event out to each listener in order.
type MultiListener []Listener

// OnEvent forwards e to every non-nil listener.
func (m MultiListener) OnEvent(e Event) {
	for _, l := range m {
		if l != nil {
			l.OnEvent(e)
		}
	}
}

type nopListener struct{}

func (nopListener) OnEvent(Event) {}
