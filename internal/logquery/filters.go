package logquery

import (
	"strconv"
	"time"
)

// LogType selects which log collection a query targets.
type LogType string

const (
	LogTypeCalls  LogType = "calls"
	LogTypeEvents LogType = "events"
)

// Order is the temporal sort direction of a query.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// datetime-local input format used by the console's time range pickers.
const localTimeLayout = "2006-01-02T15:04"

// CallFilter narrows a call log query. Empty fields are omitted from the
// request entirely; no empty-string filters are sent.
type CallFilter struct {
	Tenant        string
	TimeFrom      string // datetime-local, console's zone
	TimeTo        string
	From          string
	To            string
	AppType       string
	AppIdentifier string
	BundleID      string
	Limit         int
	Order         Order
}

// EventFilter narrows an event log query.
type EventFilter struct {
	Tenant    string
	TimeFrom  string
	TimeTo    string
	EventType string
	SessionID string
	HandleID  string
	CallID    string
	Limit     int
	Order     Order
}

// QueryParams renders the filter as request query parameters.
func (f CallFilter) QueryParams() map[string]string {
	params := map[string]string{}
	putTime(params, "date_time_gte", f.TimeFrom)
	putTime(params, "date_time_lte", f.TimeTo)
	put(params, "tenant", f.Tenant)
	put(params, "from", f.From)
	put(params, "to", f.To)
	put(params, "app_type", f.AppType)
	put(params, "app_identifier", f.AppIdentifier)
	put(params, "bundle_id", f.BundleID)
	putLimitOrder(params, f.Limit, f.Order)
	return params
}

// QueryParams renders the filter as request query parameters.
func (f EventFilter) QueryParams() map[string]string {
	params := map[string]string{}
	putTime(params, "date_time_gte", f.TimeFrom)
	putTime(params, "date_time_lte", f.TimeTo)
	put(params, "tenant", f.Tenant)
	put(params, "event_type", f.EventType)
	put(params, "session_id", f.SessionID)
	put(params, "handle_id", f.HandleID)
	put(params, "call_id", f.CallID)
	putLimitOrder(params, f.Limit, f.Order)
	return params
}

func put(params map[string]string, key, value string) {
	if value != "" {
		params[key] = value
	}
}

// putTime converts a datetime-local string to an absolute ISO 8601 timestamp.
// Values that already parse as RFC 3339 pass through unchanged.
func putTime(params map[string]string, key, value string) {
	if value == "" {
		return
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		params[key] = t.Format(time.RFC3339)
		return
	}
	if t, err := time.ParseInLocation(localTimeLayout, value, time.Local); err == nil {
		params[key] = t.UTC().Format(time.RFC3339)
		return
	}
	// Unparseable input is treated like an empty filter.
}

func putLimitOrder(params map[string]string, limit int, order Order) {
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if order == OrderAsc || order == OrderDesc {
		params["order"] = string(order)
	}
}
