// Command frame-lambda serves the framekit API behind API Gateway.
//
// Configuration comes from FRAMEKIT_* environment variables (see
// internal/config). In production the asset source is s3, with the bucket
// name either set directly or read from SSM via FRAMEKIT_ASSET_BUCKET_PARAM.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/framekit/internal/api"
	"github.com/fpang/framekit/internal/lambdaboot"
	"github.com/fpang/framekit/internal/logging"
)

var handler http.Handler

func init() {
	initStart := time.Now()
	logging.Init()

	rt, err := lambdaboot.Init(context.Background(), "frame-lambda", "")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	handler = api.NewHandler(rt.Manager, api.OptionsFromConfig(rt.Config))

	rt.Startup.
		CommitHash(commitHash).
		BuildTime(buildTime).
		InitDuration(time.Since(initStart)).
		Log()
}

func main() {
	adapter := httpadapter.NewV2(handler)
	lambda.Start(adapter.ProxyWithContext)
}
