package airtable

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListBases returns every base the API key can access.
func (c *Client) ListBases(ctx context.Context) ([]Base, error) {
	var data basesResponse
	if err := c.do(ctx, http.MethodGet, "/meta/bases", nil, nil, &data); err != nil {
		return nil, err
	}
	if data.Bases == nil {
		return []Base{}, nil
	}
	return data.Bases, nil
}

// ListTables returns the tables of baseID, including their field definitions.
func (c *Client) ListTables(ctx context.Context, baseID string) ([]Table, error) {
	var data tablesResponse
	if err := c.do(ctx, http.MethodGet, joinPath("meta", "bases", baseID, "tables"), nil, nil, &data); err != nil {
		return nil, err
	}
	if data.Tables == nil {
		return []Table{}, nil
	}
	return data.Tables, nil
}

// ListRecords returns a single page of records. The filter formula is sent
// verbatim; Airtable evaluates it.
func (c *Client) ListRecords(ctx context.Context, baseID, tableIDOrName string, opts ListRecordsOptions) ([]Record, error) {
	query := url.Values{}
	if opts.MaxRecords != nil {
		query.Set("maxRecords", strconv.Itoa(*opts.MaxRecords))
	}
	if opts.FilterFormula != nil {
		query.Set("filterByFormula", *opts.FilterFormula)
	}

	var data recordsResponse
	if err := c.do(ctx, http.MethodGet, joinPath(baseID, tableIDOrName), query, nil, &data); err != nil {
		return nil, err
	}
	if data.Records == nil {
		return []Record{}, nil
	}
	return data.Records, nil
}

// CreateRecord creates one record. The records endpoint is bulk shaped, so
// the fields travel in a one element array and the first returned record is
// the result.
func (c *Client) CreateRecord(ctx context.Context, baseID, tableIDOrName string, fields Fields) (Record, error) {
	payload := createRecordsRequest{Records: []recordInput{{Fields: fields}}}
	var data recordsResponse
	if err := c.do(ctx, http.MethodPost, joinPath(baseID, tableIDOrName), nil, payload, &data); err != nil {
		return Record{}, err
	}
	if len(data.Records) == 0 {
		return Record{}, &Error{Kind: KindUpstream, StatusCode: http.StatusOK, Message: "Airtable API error: create response contained no records"}
	}
	return data.Records[0], nil
}

// UpdateRecord patches recordID with fields. Fields that are not supplied
// keep their current values.
func (c *Client) UpdateRecord(ctx context.Context, baseID, tableIDOrName, recordID string, fields Fields) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPatch, joinPath(baseID, tableIDOrName, recordID), nil, recordInput{Fields: fields}, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
