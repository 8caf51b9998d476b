package bse

import (
	"strings"

	"starmf-gateway/internal/core/domain"
)

const (
	wireDelimiter = "|"

	// StatusSuccess is the only status the exchange documents as success.
	StatusSuccess = "100"

	// maxWireFields caps the split so an embedded delimiter in the last
	// field (free-text remarks) cannot shift positions.
	maxWireFields = 8
)

// ResponseParser decodes the exchange's pipe-delimited replies. Field 0 is
// always a status code; field 1 carries the payload on success or a
// human-readable remark on failure; field 2, when present, is an
// exchange-assigned reference.
type ResponseParser struct {
	classifier *Classifier
}

// NewResponseParser creates a parser backed by the given classifier.
func NewResponseParser(classifier *Classifier) *ResponseParser {
	return &ResponseParser{classifier: classifier}
}

// Parse splits raw into a WireResult. Malformed input never panics: an
// empty or status-less reply yields a ProtocolFault with the raw payload
// preserved. A non-success status yields both the parsed WireResult and
// the classified ErrorRecord so callers keep the raw fields for diagnostics.
func (p *ResponseParser) Parse(raw string) (*domain.WireResult, *ErrorRecord) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, newProtocolFault(raw, "empty exchange reply")
	}

	parts := strings.SplitN(trimmed, wireDelimiter, maxWireFields)
	fields := make([]string, len(parts))
	for i, part := range parts {
		fields[i] = strings.TrimSpace(part)
	}

	status := fields[0]
	if status == "" {
		return nil, newProtocolFault(raw, "blank status field")
	}

	result := &domain.WireResult{
		StatusCode: status,
		Succeeded:  status == StatusSuccess,
		RawFields:  fields,
	}
	if len(fields) > 1 {
		result.Remarks = fields[1]
	}
	if len(fields) > 2 {
		result.ExchangeRef = fields[2]
	}

	if !result.Succeeded {
		return result, p.classifier.ClassifyStatus(status, result.Remarks)
	}
	return result, nil
}
