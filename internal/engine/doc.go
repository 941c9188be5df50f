// Package engine implements the modal key dispatch pipeline for one
// content view.
//
// An Engine owns the per-view state: the leader timer, the mode oracle
// and the inspector tracker. HandleKey runs one key press through the
// pipeline:
//
//	normalize -> refresh mode -> read cached mode -> composing? ->
//	dispatch -> execute -> propagation
//
// The engine never waits on the content surface. The mode query issued
// for a key press usually resolves after that key has been dispatched and
// takes effect for the next one.
//
// Every host capability is optional. A command whose capability is
// missing is logged and otherwise ignored.
package engine
