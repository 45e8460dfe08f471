package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListTransactions(t *testing.T) {
	var gotReq searchRequest
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/PropertySearch" {
			t.Errorf("path = %s, want /PropertySearch", r.URL.Path)
		}
		gotAPIKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"address": "100 Congress Ave", "city": "Austin", "state": "TX",
			 "saleDate": "2025-01-08", "recordingDate": "2025-01-09",
			 "buyerName": "Capital Homes LLC", "ownershipCode": "CO",
			 "listingStatus": "on market"},
			{"address": "200 Lamar Blvd", "city": "Austin", "state": "TX",
			 "sale_date": "2025-01-10T00:00:00Z", "recording_date": "2025-01-11",
			 "buyer_name": "  Lamar Flips Inc  ", "ownership_code": "TR"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	dateMin := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dateMax := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	records, err := client.ListTransactions(context.Background(), "austin", dateMin, dateMax, 3, 100, SortSaleDateAsc)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}

	if gotAPIKey != "test-key" {
		t.Errorf("x-api-key = %q, want test-key", gotAPIKey)
	}
	wantReq := searchRequest{
		Market:      "austin",
		SaleDateMin: "2025-01-01",
		SaleDateMax: "2025-02-01",
		Page:        3,
		Size:        100,
		Sort:        "sale_date:asc",
	}
	if gotReq != wantReq {
		t.Errorf("request = %+v, want %+v", gotReq, wantReq)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.BuyerName != "Capital Homes LLC" {
		t.Errorf("buyer = %q, want Capital Homes LLC", first.BuyerName)
	}
	if want := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC); !first.SaleDate.Equal(want) {
		t.Errorf("sale date = %v, want %v", first.SaleDate, want)
	}
	if first.ListingStatusHint != "on market" {
		t.Errorf("listing hint = %q, want on market", first.ListingStatusHint)
	}

	second := records[1]
	if second.BuyerName != "Lamar Flips Inc" {
		t.Errorf("snake-case buyer = %q, want trimmed Lamar Flips Inc", second.BuyerName)
	}
	if want := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC); !second.SaleDate.Equal(want) {
		t.Errorf("RFC3339 sale date = %v, want %v", second.SaleDate, want)
	}
	if second.OwnershipCode != "TR" {
		t.Errorf("ownership code = %q, want TR", second.OwnershipCode)
	}
}

func TestListTransactionsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.ListTransactions(context.Background(), "austin", time.Time{}, time.Now(), 1, 100, SortSaleDateAsc)
	if err == nil {
		t.Fatal("expected an error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", apiErr.StatusCode, http.StatusTooManyRequests)
	}
}

func TestListTransactionsEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	records, err := client.ListTransactions(context.Background(), "austin", time.Time{}, time.Now(), 1, 100, SortSaleDateAsc)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}
