package dto

import (
	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/predict"
)

// MenuItemResponse is an orderable item with its pickup estimate.
type MenuItemResponse struct {
	*model.MenuItem
	Prediction *predict.Prediction `json:"prediction,omitempty"`
}

// MenuResponse is a vendor's menu for a chosen slot.
type MenuResponse struct {
	Vendor *model.Vendor      `json:"vendor"`
	Slot   string             `json:"slot"`
	Slots  []string           `json:"slots"`
	Items  []MenuItemResponse `json:"items"`
}
