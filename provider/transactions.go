package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"parcelsync/models"
)

// SortSaleDateAsc orders transaction pages ascending by sale date, so the
// last record of each page is the furthest boundary seen.
const SortSaleDateAsc = "sale_date:asc"

const searchPath = "/PropertySearch"

// ListTransactions fetches one page of a market's transaction feed within
// the date window. The caller drives pagination.
func (c *Client) ListTransactions(ctx context.Context, market string, dateMin, dateMax time.Time, page, pageSize int, sort string) ([]models.RawTransactionRecord, error) {
	req := searchRequest{
		Market:      market,
		SaleDateMin: dateMin.Format("2006-01-02"),
		SaleDateMax: dateMax.Format("2006-01-02"),
		Page:        page,
		Size:        pageSize,
		Sort:        sort,
	}

	body, err := c.doPost(ctx, searchPath, req)
	if err != nil {
		return nil, fmt.Errorf("list transactions %s page %d: %w", market, page, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("list transactions %s page %d: decode: %w", market, page, err)
	}

	records := make([]models.RawTransactionRecord, 0, len(resp.Data))
	for i := range resp.Data {
		records = append(records, normalizeTransaction(&resp.Data[i]))
	}
	return records, nil
}
