package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/zatekoja/feedbackbot/pkg/config"
)

// Client wraps the Google Sheets API service authenticated with a
// service account.
type Client struct {
	service *sheets.Service
}

// NewClient builds a Sheets service from either inline service account
// JSON or a credentials file path, whichever the configuration carries.
func NewClient(ctx context.Context, cfg *config.SheetsConfig) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.ServiceAccountJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	case cfg.ServiceAccountFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.ServiceAccountFile))
	default:
		return nil, fmt.Errorf("no Google service account credentials configured")
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &Client{service: service}, nil
}

// Service returns the underlying Sheets API service.
func (c *Client) Service() *sheets.Service {
	return c.service
}
