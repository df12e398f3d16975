// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The TUI shows one listening-stats snapshot at a time, split across tabs:
//  1. Artists : top-artists ranking for the active time range
//  2. Tracks : top-tracks ranking
//  3. Genres : genre frequency ranking derived from the top artists
//  4. Recent : play-history feed
//  5. Features : audio feature averages
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Loads run through [tasks.DashboardEngine] in a goroutine; progress updates flow
// through a channel for non-blocking status reporting while a spinner runs.
// Cycling the time range discards the derived view and triggers a reload, but a
// failed reload keeps the previous snapshot on screen.
//
// Keyboard navigation uses vim-style bindings (h/l or tab for tabs, t for the
// time range, q to quit) with contextual help displayed via charmbracelet/bubbles/help.
package ui
