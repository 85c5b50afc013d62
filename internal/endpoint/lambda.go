package endpoint

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaHandler adapts e to API Gateway proxy events. The returned error is
// always nil so the platform never turns a failure into its own 502.
func LambdaHandler(e *Endpoint) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				// reported by Handle as a missing prompt
				decoded = nil
			}
			body = decoded
		}
		resp := e.Handle(ctx, Request{Method: req.HTTPMethod, Body: body})
		return events.APIGatewayProxyResponse{
			StatusCode: resp.StatusCode,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       string(resp.Body),
		}, nil
	}
}
