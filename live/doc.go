// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live drives the auto-refreshing counting screens.

A Board holds the latest snapshot of one election together with the cursors
of the view showing it. Four timers run per board:

	countdown          1s   recompute time remaining from the stored snapshot
	refresh            1s   fetch, aggregate, clamp cursors
	position carousel  10s  advance to the next position
	bulletin carousel  5s   advance to the next bulletin slot

A refresh never resets a cursor. If the new data has fewer positions or pages
the cursor is clamped; otherwise it stays where the viewer left it. A failed
refresh keeps the previous data on screen and exposes the error in View.

Boards are owned by a Registry, which the HTTP layer holds and closes on
shutdown. Consumers that want to react to new data subscribe to
Board.Updates instead of polling a shared counter.
*/
package live
