// Package spectate streams live games to websocket watchers.
//
// A Hub owns every connected watcher. Each running game opens a Stream, which
// is an engine.Listener: every grid event is published to the watchers of
// that stream together with a snapshot of the board.
//
// HTTP surface:
//
//	GET /streams     JSON array of live stream ids
//	GET /watch/{id}  websocket; one JSON Message per grid event
package spectate
