// Package lambdaboot provides the startup wiring shared by frame-lambda and
// frame-web: logging, configuration, AWS clients, the asset loader, and the
// frame manager built on top of it.
package lambdaboot

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/framekit/internal/assetsource"
	"github.com/fpang/framekit/internal/config"
	"github.com/fpang/framekit/internal/frame"
	"github.com/fpang/framekit/internal/logging"
)

// AWSClients holds the core AWS SDK clients.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
	S3     *s3.Client
}

// ParameterGetter is the subset of *ssm.Client used to read parameters.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// InitAWS loads the default AWS config and returns it along with the clients
// framekit uses.
func InitAWS(ctx context.Context) (AWSClients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return AWSClients{}, fmt.Errorf("load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
		S3:     s3.NewFromConfig(cfg),
	}, nil
}

// ResolveParam reads a plain or SecureString parameter from SSM Parameter Store.
func ResolveParam(ctx context.Context, client ParameterGetter, name string) (string, error) {
	start := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("read SSM parameter %s: %w", name, err)
	}
	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("SSM parameter %s is empty", name)
	}
	log.Debug().Str("param", name).Dur("elapsed", time.Since(start)).Msg("Parameter loaded from SSM")
	return *result.Parameter.Value, nil
}

// Runtime is everything a server binary needs after startup.
type Runtime struct {
	Config  *config.Config
	Manager *frame.Manager
	Startup *logging.StartupLogger
}

// Init loads configuration from configPath (see config.Load), connects to AWS
// when the asset source needs it, and builds the frame manager.
func Init(ctx context.Context, name, configPath string) (*Runtime, error) {
	initStart := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	startup := logging.NewStartupLogger(name).
		Config("assetSource", cfg.Assets.Source).
		Config("baseDir", cfg.Assets.BaseDir).
		Config("fallback", cfg.Assets.FallbackName).
		Feature("embeddedFallback", cfg.Assets.EmbeddedFallback).
		Feature("metrics", cfg.Metrics.Enabled).
		Feature("originVerify", cfg.Server.OriginVerifySecret != "")

	var s3Client *s3.Client
	if cfg.Assets.Source == config.SourceS3 {
		clients, err := InitAWS(ctx)
		if err != nil {
			return nil, err
		}
		s3Client = clients.S3
		if cfg.Assets.Bucket == "" {
			startup.SSMParam("assetBucket", cfg.Assets.BucketParam)
			cfg.Assets.Bucket, err = ResolveParam(ctx, clients.SSM, cfg.Assets.BucketParam)
			if err != nil {
				return nil, err
			}
		}
		startup.S3Bucket("assets", cfg.Assets.Bucket)
	}

	var loader frame.Loader
	if s3Client != nil {
		loader, err = assetsource.FromConfig(cfg.Assets, s3Client)
	} else {
		loader, err = assetsource.FromConfig(cfg.Assets, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("build asset loader: %w", err)
	}

	opts := []frame.Option{frame.WithResolver(cfg.Resolver())}
	if cfg.Metrics.Enabled {
		opts = append(opts, frame.WithMetrics(cfg.Metrics.Namespace))
	}

	startup.InitDuration(time.Since(initStart))
	return &Runtime{
		Config:  cfg,
		Manager: frame.NewManager(loader, opts...),
		Startup: startup,
	}, nil
}
