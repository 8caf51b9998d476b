package domain

// WireResult is the decoded form of one pipe-delimited exchange reply.
// Only the response parser constructs these; callers treat them as read-only.
type WireResult struct {
	StatusCode  string   `json:"status_code"`
	Succeeded   bool     `json:"succeeded"`
	Remarks     string   `json:"remarks"`
	ExchangeRef string   `json:"exchange_ref,omitempty"` // Exchange-assigned id, when echoed
	RawFields   []string `json:"-"`                      // Every field as received, for diagnostics
}

// Field returns the raw field at position i, or "" when the reply carried
// fewer fields. The exchange legitimately omits trailing fields.
func (w *WireResult) Field(i int) string {
	if i < 0 || i >= len(w.RawFields) {
		return ""
	}
	return w.RawFields[i]
}
