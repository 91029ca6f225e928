package service

import (
	"math"
	"time"

	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
)

// Flag thresholds.
const (
	UrgentWindow  = 5 * time.Minute
	GhostAfter    = 20 * time.Minute
	PrepCueMargin = 2 // minutes
)

// DeriveFlags computes the read-time flags of an order. It never fails:
// an unparseable pickup time suppresses the urgent flag and the prep cue only.
func DeriveFlags(order *model.Order, prepMinutes int, now time.Time) model.OrderFlags {
	var flags model.OrderFlags

	if order.Status == model.StatusReady && now.Sub(order.CreatedAt) > GhostAfter {
		flags.Ghost = true
	}

	// Pickup strings carry minutes only, so compare against the current minute.
	minute := now.Truncate(time.Minute)
	pickup, ok := predict.ParsePickup(order.PredictedPickupTime, minute)
	if !ok {
		return flags
	}
	remaining := pickup.Sub(minute)

	if order.IsActive() && remaining > 0 && remaining < UrgentWindow {
		flags.Urgent = true
	}

	if order.Status == model.StatusReceived {
		left := remaining.Minutes()
		if left <= float64(prepMinutes+PrepCueMargin) {
			flags.PrepCue = &model.PrepCue{StartNow: true}
		} else {
			flags.PrepCue = &model.PrepCue{
				StartInMinutes: int(math.Max(0, math.Floor(left-float64(prepMinutes)))),
			}
		}
	}

	return flags
}
