package airtable

import "encoding/json"

// Fields maps field names to arbitrary JSON values. The client never checks
// values against the table schema.
type Fields map[string]any

type Base struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PermissionLevel string `json:"permissionLevel"`
}

type Field struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

type View struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Table struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	PrimaryFieldID string  `json:"primaryFieldId,omitempty"`
	Description    string  `json:"description,omitempty"`
	Fields         []Field `json:"fields"`
	Views          []View  `json:"views,omitempty"`
}

// Record is one table row. Top-level keys other than id, createdTime and
// fields (commentCount, for example) are kept verbatim in Extra and written
// back out when the record is encoded.
type Record struct {
	ID          string `json:"id"`
	CreatedTime string `json:"createdTime,omitempty"`
	Fields      Fields `json:"fields"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "id")
	delete(all, "createdTime")
	delete(all, "fields")
	if len(all) > 0 {
		known.Extra = all
	}
	*r = Record(known)
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	if len(r.Extra) == 0 {
		return json.Marshal(plain(r))
	}
	out := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["id"] = r.ID
	if r.CreatedTime != "" {
		out["createdTime"] = r.CreatedTime
	}
	out["fields"] = r.Fields
	return json.Marshal(out)
}

// ListRecordsOptions holds the optional query parameters of ListRecords. Nil
// fields are omitted from the request.
type ListRecordsOptions struct {
	MaxRecords    *int
	FilterFormula *string
}

type basesResponse struct {
	Bases []Base `json:"bases"`
}

type tablesResponse struct {
	Tables []Table `json:"tables"`
}

type recordsResponse struct {
	Records []Record `json:"records"`
}

type recordInput struct {
	Fields Fields `json:"fields"`
}

type createRecordsRequest struct {
	Records []recordInput `json:"records"`
}
