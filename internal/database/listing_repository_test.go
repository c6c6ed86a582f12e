package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/nordbil/carcatalog/internal/database"
	"github.com/nordbil/carcatalog/internal/domain"
)

// listingColumns lists the columns returned by listing SELECT queries.
var listingColumns = []string{
	"id", "source", "reference", "url", "make", "model", "year", "price", "mileage",
	"display_make", "display_name", "image_reference", "is_active",
	"created_at", "last_scraped_at", "last_seen_at",
}

func newListingRepo(t *testing.T) (*database.ListingRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	db := sqlx.NewDb(mockDB, "postgres")
	repo := database.NewListingRepository(db)

	return repo, mock, func() { mockDB.Close() }
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestListingRepository_Upsert(t *testing.T) {
	repo, mock, cleanup := newListingRepo(t)
	defer cleanup()

	listing := &domain.Listing{
		Source:         "hekla",
		Reference:      "123456",
		URL:            "https://hekla.is/bilar/123456",
		Make:           strPtr("toyota"),
		Model:          strPtr("yaris"),
		Year:           intPtr(2020),
		Price:          int64Ptr(3_490_000),
		Mileage:        int64Ptr(45_000),
		DisplayMake:    strPtr("Toyota"),
		DisplayName:    strPtr("Yaris"),
		ImageReference: strPtr("https://images.hekla.is/123456.jpg"),
	}

	mock.ExpectExec("INSERT INTO car_listings").
		WithArgs(
			"hekla", "123456", "https://hekla.is/bilar/123456",
			"toyota", "yaris", 2020, int64(3_490_000), int64(45_000),
			"Toyota", "Yaris", "https://images.hekla.is/123456.jpg",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), listing); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestListingRepository_ActiveReferences(t *testing.T) {
	repo, mock, cleanup := newListingRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT reference FROM car_listings").
		WithArgs("hekla").
		WillReturnRows(sqlmock.NewRows([]string{"reference"}).AddRow("111111").AddRow("222222"))

	refs, err := repo.ActiveReferences(context.Background(), "hekla")
	if err != nil {
		t.Fatalf("ActiveReferences() error = %v", err)
	}
	if len(refs) != 2 || refs[0] != "111111" {
		t.Errorf("ActiveReferences() = %v", refs)
	}

	expectationsMet(t, mock)
}

func TestListingRepository_DeactivateStale(t *testing.T) {
	repo, mock, cleanup := newListingRepo(t)
	defer cleanup()

	mock.ExpectExec("UPDATE car_listings").
		WithArgs(int64(604800)).
		WillReturnResult(sqlmock.NewResult(0, 12))

	count, err := repo.DeactivateStale(context.Background(), 604800)
	if err != nil {
		t.Fatalf("DeactivateStale() error = %v", err)
	}
	if count != 12 {
		t.Errorf("DeactivateStale() = %d, want 12", count)
	}

	expectationsMet(t, mock)
}

func TestListingRepository_ListActiveBySource(t *testing.T) {
	repo, mock, cleanup := newListingRepo(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(listingColumns).
		AddRow("id-1", "hekla", "111111", "https://hekla.is/bilar/111111",
			"toyota", "yaris", 2020, int64(3_490_000), int64(45_000),
			"Toyota", "Yaris", nil, true, now, now, now)

	mock.ExpectQuery("SELECT (.+) FROM car_listings").
		WithArgs("hekla").
		WillReturnRows(rows)

	listings, err := repo.ListActiveBySource(context.Background(), "hekla")
	if err != nil {
		t.Fatalf("ListActiveBySource() error = %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	if listings[0].Make == nil || *listings[0].Make != "toyota" {
		t.Errorf("Make = %v, want toyota", listings[0].Make)
	}
	if listings[0].ImageReference != nil {
		t.Errorf("ImageReference = %v, want nil", listings[0].ImageReference)
	}

	expectationsMet(t, mock)
}

func TestListingRepository_Delete(t *testing.T) {
	repo, mock, cleanup := newListingRepo(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM car_listings").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "id-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestListingRepository_Delete_MissingRow(t *testing.T) {
	repo, mock, cleanup := newListingRepo(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM car_listings").
		WithArgs("id-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "id-404"); err == nil {
		t.Fatal("Delete() expected error for missing row")
	}

	expectationsMet(t, mock)
}

func TestListingRepository_Touch_MissingRowIsNotError(t *testing.T) {
	repo, mock, cleanup := newListingRepo(t)
	defer cleanup()

	mock.ExpectExec("UPDATE car_listings SET last_seen_at").
		WithArgs("hekla", "999999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Touch(context.Background(), "hekla", "999999"); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}

	expectationsMet(t, mock)
}
