package main

import (
	"context"
	"net/http"
	"os"

	"performer-site-backend/internal/app"
	"performer-site-backend/internal/config"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

var httpAdapter *httpadapter.HandlerAdapterV2

func init() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		app.NewLogger(config.LogConfig{}).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	// Rate-limit state lives only as long as this execution environment;
	// the janitor runs whenever the environment is thawed.
	go a.RunJanitor(context.Background())

	// Create the HTTP adapter for API Gateway HTTP API (v2)
	httpAdapter = httpadapter.NewV2(http.Handler(a.Router))
}

func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return httpAdapter.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
