// Package trackpad emulates a pointing device on top of an arbitrary element
// tree.
//
// An Engine owns a virtual cursor that is moved by relative drag deltas and
// by touch contacts bound to the pad. Contacts bound to the left and right
// button zones hold the primary and secondary buttons. From that input the
// engine reconstructs the event vocabulary of a real mouse: hover
// enter/leave transitions, press/release/click, click suppression under
// drag, and the dragstart/drag/dragover/drop/dragend sequence.
//
// The engine never touches a real document. It resolves elements through a
// HitTester and hands every synthesized Event to a Dispatcher, so the same
// state machine drives a browser page over a socket or a fake tree in tests.
//
// # Ordering
//
// Events derived from one input occurrence are dispatched synchronously, in
// this order: drag-phase events (dragstart, drag, dragover), then motion,
// press and release events, then click or contextmenu.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Feed it from a single goroutine.
package trackpad
