package scraper

import (
	"context"
	"fmt"
)

// The seven endpoint paths are deliberately generic; the real venue's URL
// scheme is an external collaborator per scope, but its response shape
// (the {success, data} envelope and these field names) is load-bearing.

func (c *Client) fetchLeadCommon(ctx context.Context, leadID string) (*RawLeadCommon, error) {
	var out RawLeadCommon
	if err := c.get(ctx, fmt.Sprintf("/fapi/v1/leadCommon?leadId=%s", leadID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) fetchPortfolioDetail(ctx context.Context, leadID string) (*RawPortfolioDetail, error) {
	var out RawPortfolioDetail
	if err := c.get(ctx, fmt.Sprintf("/fapi/v1/portfolioDetail?leadId=%s", leadID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) fetchActivePositions(ctx context.Context, leadID string) ([]RawPosition, error) {
	var out []RawPosition
	if err := c.get(ctx, fmt.Sprintf("/fapi/v1/positions?leadId=%s", leadID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetchRoiSeries(ctx context.Context, leadID string) ([]RawRoiPoint, error) {
	var out []RawRoiPoint
	if err := c.get(ctx, fmt.Sprintf("/fapi/v1/roiSeries?leadId=%s", leadID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetchAssetPreferences(ctx context.Context, leadID string) (*RawAssetPreferences, error) {
	var out RawAssetPreferences
	if err := c.get(ctx, fmt.Sprintf("/fapi/v1/assetPreferences?leadId=%s", leadID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) fetchRoiChart(ctx context.Context, leadID string) ([]RawRoiPoint, error) {
	var out []RawRoiPoint
	if err := c.get(ctx, fmt.Sprintf("/fapi/v1/roiChart?leadId=%s", leadID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetchOrderHistory(ctx context.Context, leadID string, pageSize int) (RawOrderHistory, error) {
	var out RawOrderHistory
	err := c.get(ctx, fmt.Sprintf("/fapi/v1/orderHistory?leadId=%s&pageSize=%d", leadID, pageSize), &out)
	if err != nil {
		return RawOrderHistory{}, err
	}
	return out, nil
}
