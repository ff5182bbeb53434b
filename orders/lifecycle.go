package orders

import "github.com/02priyeshraj/QR_Menu_Backend/models"

var progress = map[models.OrderStatus]int{
	models.StatusPending:   0,
	models.StatusPreparing: 1,
	models.StatusReady:     2,
	models.StatusCompleted: 3,
}

// CanTransition reports whether an order may move from one status to another.
// Orders only move forward along pending, preparing, ready, completed (steps
// may be skipped). Any non-terminal order may be cancelled. Re-applying the
// current status is always allowed.
func CanTransition(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	if from.Terminal() || !to.Valid() {
		return false
	}
	if to == models.StatusCancelled {
		return true
	}
	return progress[to] > progress[from]
}
