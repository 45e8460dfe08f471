package sync

import (
	"strings"

	"parcelsync/models"
)

// ResolveStatus maps the provider's listing hint onto lifecycle and listing
// state. Anything but an explicit on-market hint counts as renovation stock
// that has not been listed yet.
func ResolveStatus(hint string) (models.PropertyStatus, models.ListingStatus) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "on market", "on_market":
		return models.StatusOnMarket, models.ListingOnMarket
	default:
		return models.StatusInRenovation, models.ListingOffMarket
	}
}
