package v1

import (
	"context"
	"encoding/json"
	"fmt"
)

// FunctionsEndpoint invokes backend serverless functions, e.g. the AI
// assistant's conversational endpoint.
type FunctionsEndpoint struct {
	transport *Transport
}

func (f *FunctionsEndpoint) Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error) {
	resp, err := f.transport.Post(ctx, "/api/v1/functions/"+name, payload, nil)
	if err != nil {
		return nil, err
	}
	var env rowEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, fmt.Errorf("invoke %s: decode: %w", name, err)
	}
	return env.Data, nil
}
