package ingest

import (
	"testing"
	"time"

	"github.com/nordbil/carcatalog/internal/domain"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func testEntry() domain.FrontierEntry {
	return domain.FrontierEntry{
		Source:    "hekla",
		Reference: "123456",
		URL:       "https://hekla.is/bilar/123456",
	}
}

func TestBuildListing_NormalizesAttributes(t *testing.T) {
	record := &domain.VehicleRecord{
		Title:    "Toyota Land Cruiser 150",
		Make:     "TOYOTA",
		Model:    "Land Cruiser",
		Year:     intPtr(2019),
		Price:    int64Ptr(8_990_000),
		Mileage:  int64Ptr(87_000),
		ImageURL: strPtr("  https://images.hekla.is/123456.jpg "),
	}

	listing := BuildListing(testEntry(), record)

	if listing.Source != "hekla" || listing.Reference != "123456" {
		t.Errorf("identity = %s/%s, want hekla/123456", listing.Source, listing.Reference)
	}
	if listing.Make == nil || *listing.Make != "toyota" {
		t.Errorf("Make = %v, want toyota", listing.Make)
	}
	if listing.DisplayMake == nil || *listing.DisplayMake != "Toyota" {
		t.Errorf("DisplayMake = %v, want Toyota", listing.DisplayMake)
	}
	if listing.Model == nil {
		t.Fatal("Model is nil")
	}
	if listing.Year == nil || *listing.Year != 2019 {
		t.Errorf("Year = %v, want 2019", listing.Year)
	}
	if listing.Price == nil || *listing.Price != 8_990_000 {
		t.Errorf("Price = %v, want 8990000", listing.Price)
	}
	if listing.ImageReference == nil || *listing.ImageReference != "https://images.hekla.is/123456.jpg" {
		t.Errorf("ImageReference = %v, want trimmed url", listing.ImageReference)
	}
}

func TestBuildListing_NullsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name   string
		record domain.VehicleRecord
		check  func(t *testing.T, l *domain.Listing)
	}{
		{
			name:   "year before 1950",
			record: domain.VehicleRecord{Make: "toyota", Year: intPtr(1949)},
			check: func(t *testing.T, l *domain.Listing) {
				if l.Year != nil {
					t.Errorf("Year = %d, want nil", *l.Year)
				}
			},
		},
		{
			name:   "year too far ahead",
			record: domain.VehicleRecord{Make: "toyota", Year: intPtr(time.Now().Year() + 2)},
			check: func(t *testing.T, l *domain.Listing) {
				if l.Year != nil {
					t.Errorf("Year = %d, want nil", *l.Year)
				}
			},
		},
		{
			name:   "next model year kept",
			record: domain.VehicleRecord{Make: "toyota", Year: intPtr(time.Now().Year() + 1)},
			check: func(t *testing.T, l *domain.Listing) {
				if l.Year == nil {
					t.Error("Year is nil, want kept")
				}
			},
		},
		{
			name:   "zero price",
			record: domain.VehicleRecord{Make: "toyota", Price: int64Ptr(0)},
			check: func(t *testing.T, l *domain.Listing) {
				if l.Price != nil {
					t.Errorf("Price = %d, want nil", *l.Price)
				}
			},
		},
		{
			name:   "negative mileage",
			record: domain.VehicleRecord{Make: "toyota", Mileage: int64Ptr(-1)},
			check: func(t *testing.T, l *domain.Listing) {
				if l.Mileage != nil {
					t.Errorf("Mileage = %d, want nil", *l.Mileage)
				}
			},
		},
		{
			name:   "absurd mileage",
			record: domain.VehicleRecord{Make: "toyota", Mileage: int64Ptr(12_000_000)},
			check: func(t *testing.T, l *domain.Listing) {
				if l.Mileage != nil {
					t.Errorf("Mileage = %d, want nil", *l.Mileage)
				}
			},
		},
		{
			name:   "blank image reference",
			record: domain.VehicleRecord{Make: "toyota", ImageURL: strPtr("   ")},
			check: func(t *testing.T, l *domain.Listing) {
				if l.ImageReference != nil {
					t.Errorf("ImageReference = %q, want nil", *l.ImageReference)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := tt.record
			tt.check(t, BuildListing(testEntry(), &record))
		})
	}
}

func TestUsable(t *testing.T) {
	tests := []struct {
		name   string
		record *domain.VehicleRecord
		want   bool
	}{
		{"nil record", nil, false},
		{"known make", &domain.VehicleRecord{Make: "Toyota"}, true},
		{"title only", &domain.VehicleRecord{Title: "Nissan Leaf Tekna"}, true},
		{"empty record", &domain.VehicleRecord{}, false},
		{"whitespace title", &domain.VehicleRecord{Title: "   "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Usable(tt.record); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}
