package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	fiberadapter "github.com/awslabs/aws-lambda-go-api-proxy/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/catalog-search/internal/api"
	"github.com/catalog-search/internal/config"
	"github.com/catalog-search/internal/database"
	applog "github.com/catalog-search/internal/logger"
	"github.com/catalog-search/internal/prompt"
	"github.com/catalog-search/internal/service"
)

var fiberLambda *fiberadapter.FiberLambda

// Handler is the Lambda handler function for HTTP API v2
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return fiberLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	inLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	logger := applog.New(applog.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty && !inLambda,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewClient(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	logger.Info().Str("table", db.TableName()).Str("data_file", cfg.DataFile).Msg("Starting catalog search")
	catalog := service.NewCatalogService(db, logger)

	// On Lambda the table is provisioned and loaded ahead of time.
	if inLambda {
		fiberLambda = fiberadapter.New(api.NewApp(catalog, logger))
		lambda.Start(Handler)
		return
	}

	catalog.EnsureTable(ctx)
	// Load failures are logged by the loader and never stop the program.
	_, _ = catalog.LoadCourses(ctx, cfg.DataFile)

	if cfg.HTTPAddr != "" {
		serve(ctx, api.NewApp(catalog, logger), cfg.HTTPAddr, logger)
		return
	}

	code := runPrompt(ctx, prompt.New(catalog, os.Stdin, os.Stdout), os.Stderr, logger)
	stop()
	os.Exit(code)
}

// runPrompt runs the search loop and returns the process exit status.
// Answering "n" terminates with a message and status 1; closed input or an
// interrupt ends quietly with 0.
func runPrompt(ctx context.Context, p *prompt.Prompt, stderr io.Writer, logger zerolog.Logger) int {
	err := p.Run(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(stderr, "Program Terminating")
		return 1
	case errors.Is(err, prompt.ErrInputClosed), errors.Is(err, context.Canceled):
		return 0
	default:
		logger.Error().Err(err).Msg("Prompt stopped")
		return 1
	}
}

// serve runs the lookup API until ctx is cancelled.
func serve(ctx context.Context, app *fiber.App, addr string, logger zerolog.Logger) {
	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	logger.Info().Str("addr", addr).Msg("Starting server")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
