package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"parcelsync/models"
)

// MaxDetailBatch is the provider's hard cap on addresses per detail call.
const MaxDetailBatch = 100

// ErrMalformedBatch marks a detail response whose body is not the expected
// array shape. Callers skip the whole batch and move on; the batch is not
// retried.
var ErrMalformedBatch = errors.New("malformed detail batch response")

const detailPath = "/PropertyDetailBulk"

// FetchPropertyDetails resolves up to MaxDetailBatch addresses to full
// property payloads. Individual lookups can fail without failing the batch;
// those entries carry Error instead of Property.
func (c *Client) FetchPropertyDetails(ctx context.Context, addresses []string) ([]models.DetailResult, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	if len(addresses) > MaxDetailBatch {
		return nil, fmt.Errorf("detail batch of %d exceeds limit of %d", len(addresses), MaxDetailBatch)
	}

	body, err := c.doPost(ctx, detailPath, detailRequest{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("fetch property details: %w", err)
	}

	var wire []wireDetailResult
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}

	results := make([]models.DetailResult, 0, len(wire))
	for i := range wire {
		w := &wire[i]
		results = append(results, models.DetailResult{
			Address:  w.Address,
			Property: normalizeDetail(w.Property),
			Error:    w.Error,
		})
	}
	return results, nil
}
