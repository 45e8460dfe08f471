package sync

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		buyerName     string
		ownershipCode string
		want          Classification
	}{
		{"trust code TR", "John Smith", "TR", ClassTrust},
		{"trust code FL", "Anything At All LLC", "FL", ClassTrust},
		{"trust code lowercase", "John Smith", "tr", ClassTrust},
		{"trust code padded", "John Smith", " TR ", ClassTrust},
		{"family living trust", "The Smith Family Living Trust", "", ClassTrust},
		{"bare trust word", "Jones Trust", "", ClassTrust},
		{"revocable trust", "MILLER REVOCABLE TRUST", "", ClassTrust},
		{"trust beats corporate suffix", "Smith Properties Trust", "", ClassTrust},
		{"trustee is not a trust word", "Trustee Holdings LLC", "", ClassCorporate},
		{"opendoor", "Opendoor Property Trust I", "", ClassTrust},
		{"opendoor no trust word", "OPENDOOR PROPERTY J LLC", "", ClassCorporate},
		{"opendoor embedded", "opendoor labs inc", "", ClassCorporate},
		{"llc suffix", "ABC Properties, LLC", "", ClassCorporate},
		{"llc lowercase", "abc properties llc", "", ClassCorporate},
		{"inc with period", "Maplewood Homes, Inc.", "", ClassCorporate},
		{"investments plural", "Bluebonnet Investments", "", ClassCorporate},
		{"ventures plural", "Sunrise Ventures", "", ClassCorporate},
		{"holdings plural", "Red Door Holdings", "", ClassCorporate},
		{"realty", "Lone Star Realty", "", ClassCorporate},
		{"capital", "Hill Country Capital", "", ClassCorporate},
		{"individual", "John Smith", "", ClassIndividual},
		{"unlisted suffix", "Smith Brothers Construction", "", ClassIndividual},
		{"suffix embedded in word", "Collc Smith", "", ClassIndividual},
		{"empty name", "", "", ClassIndividual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.buyerName, tt.ownershipCode); got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.buyerName, tt.ownershipCode, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		if got := Classify("ABC Properties, LLC", ""); got != ClassCorporate {
			t.Fatalf("run %d: got %v, want %v", i, got, ClassCorporate)
		}
	}
}
