// Package sim is a headless browser host for the dispatch engine.
//
// Each Page is a small document model written in Lua and evaluated with
// gopher-lua. A page owns one Lua state, served by a single worker
// goroutine, so scripts sent through the bridge complete asynchronously
// just as they do in a real content surface. Browser implements view and
// window management on top of pages.
//
// The model has a handful of focusable elements (a search box, a textarea,
// a link, a checkbox), a scroll position, navigation history and reload
// counters, which is enough to exercise every command the engine issues.
package sim
