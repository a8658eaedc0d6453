package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/logging"
)

const defaultMaxRecords = 100

func requiredString(args map[string]any, name string) (string, error) {
	v, _ := args[name].(string)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

func optionalString(args map[string]any, name string) *string {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// parseMaxRecords returns the max_records argument, defaulting to 100 when it
// is absent.
func parseMaxRecords(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return defaultMaxRecords, nil
	case float64:
		if v <= 0 || v > math.MaxInt32 || v != math.Trunc(v) {
			return 0, fmt.Errorf("max_records must be a positive integer")
		}
		return int(v), nil
	case int:
		if v <= 0 || v > math.MaxInt32 {
			return 0, fmt.Errorf("max_records must be a positive integer")
		}
		return v, nil
	default:
		return 0, fmt.Errorf("max_records must be a positive integer")
	}
}

// parseFields accepts a JSON object, or a string holding one, since some
// hosts stringify nested arguments.
func parseFields(value any, allowEmpty bool) (airtable.Fields, error) {
	var fields airtable.Fields
	switch v := value.(type) {
	case map[string]any:
		fields = airtable.Fields(v)
	case string:
		if err := json.Unmarshal([]byte(v), &fields); err != nil {
			return nil, fmt.Errorf("fields must be a JSON object: %v", err)
		}
	case nil:
		return nil, fmt.Errorf("fields is required")
	default:
		return nil, fmt.Errorf("fields must be an object mapping field names to values")
	}
	if fields == nil || (!allowEmpty && len(fields) == 0) {
		return nil, fmt.Errorf("fields must contain at least one field")
	}
	return fields, nil
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func jsonResult(v any) *mcp.CallToolResult {
	return mcp.NewToolResultText(string(mustMarshal(v)))
}

// failure turns an Airtable error into a tool error result carrying the
// error message verbatim.
func failure(log logging.Logger, tool string, err error) *mcp.CallToolResult {
	kind := "unknown"
	var apiErr *airtable.Error
	if errors.As(err, &apiErr) {
		kind = apiErr.Kind.String()
	}
	log.Error(err, "airtable call failed", "tool", tool, "kind", kind)
	return mcp.NewToolResultError(err.Error())
}
