package sync

import (
	"testing"

	"parcelsync/models"
)

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		hint        string
		wantStatus  models.PropertyStatus
		wantListing models.ListingStatus
	}{
		{"on market", models.StatusOnMarket, models.ListingOnMarket},
		{"on_market", models.StatusOnMarket, models.ListingOnMarket},
		{"On Market", models.StatusOnMarket, models.ListingOnMarket},
		{"ON_MARKET", models.StatusOnMarket, models.ListingOnMarket},
		{"  on market  ", models.StatusOnMarket, models.ListingOnMarket},
		{"off market", models.StatusInRenovation, models.ListingOffMarket},
		{"pending", models.StatusInRenovation, models.ListingOffMarket},
		{"", models.StatusInRenovation, models.ListingOffMarket},
		{"garbage", models.StatusInRenovation, models.ListingOffMarket},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			status, listing := ResolveStatus(tt.hint)
			if status != tt.wantStatus || listing != tt.wantListing {
				t.Errorf("ResolveStatus(%q) = (%v, %v), want (%v, %v)",
					tt.hint, status, listing, tt.wantStatus, tt.wantListing)
			}
		})
	}
}

func TestResolveStatusNeverSold(t *testing.T) {
	for _, hint := range []string{"sold", "SOLD", "closed", "off market", "on market", ""} {
		status, _ := ResolveStatus(hint)
		if status == models.StatusSold {
			t.Fatalf("ResolveStatus(%q) produced sold; the mapping must never do that", hint)
		}
	}
}
