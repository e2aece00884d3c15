package formatter

import (
	"encoding/json"
	"fmt"
)

// ResponseBuilder serializes aggregates.
type ResponseBuilder struct{}

// NewResponseBuilder creates a new response builder for formatting aggregates
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

// BuildJSON serializes an aggregate to JSON
func (rb *ResponseBuilder) BuildJSON(agg *Aggregate) ([]byte, error) {
	b, err := json.Marshal(agg)
	if err != nil {
		return nil, fmt.Errorf("formatter: encode aggregate seq %d: %w", agg.Seq, err)
	}
	return b, nil
}
