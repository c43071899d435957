// Command extract runs one extraction pass over a set of floor-plan pages
// and rebuilds the project index.
//
// Usage:
//
//	extract -project <uuid> -pages pages.json -payloads rules.json \
//	        -type room -policy conservative
//
// pages.json is a JSON array of page references; rules.json is the ordered
// rule payload list negotiated for the project.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plansift/internal/blocks"
	"plansift/internal/config"
	"plansift/internal/domain"
	"plansift/internal/extract"
	"plansift/internal/ident"
	"plansift/internal/port"
	"plansift/internal/repository/postgres"
	"plansift/internal/service"
	s3storage "plansift/internal/storage/s3"
	"plansift/internal/token"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		projectArg  = flag.String("project", "", "project UUID")
		pagesPath   = flag.String("pages", "", "path to JSON array of page references")
		rulesPath   = flag.String("payloads", "", "path to JSON rule payload list")
		typeArg     = flag.String("type", string(domain.TypeRoom), "object type: room|door|schedule_table")
		policyArg   = flag.String("policy", string(domain.PolicyConservative), "extraction policy: conservative|relaxed")
	)
	flag.Parse()

	projectID, err := uuid.Parse(*projectArg)
	if err != nil {
		return fmt.Errorf("invalid -project: %w", err)
	}
	objType, err := parseObjectType(*typeArg)
	if err != nil {
		return err
	}
	policy, err := parsePolicy(*policyArg)
	if err != nil {
		return err
	}

	pages, err := readPages(*pagesPath, projectID)
	if err != nil {
		return err
	}
	rawPayloads, err := os.ReadFile(*rulesPath)
	if err != nil {
		return fmt.Errorf("reading payloads: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	objectRepo := postgres.NewObjectRepo(db)
	indexRepo := postgres.NewIndexRepo(db)

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	pageSource := s3storage.NewPageSource(s3Client, cfg.S3.Bucket)

	vector := token.NewVectorProvider(pageSource, token.NewExecRunner(), token.VectorProviderConfig{
		Pdftotext:      cfg.Extraction.Pdftotext,
		TargetWidthPX:  cfg.Raster.TargetWidthPX,
		TargetHeightPX: cfg.Raster.TargetHeightPX,
	}, logger)

	var fallback port.TokenProvider
	if cfg.Detector.Endpoint != "" {
		detector := token.NewDetectorClient(cfg.Detector.Endpoint, cfg.Detector.APIKey,
			time.Duration(cfg.Detector.TimeoutSecs)*time.Second)
		fallback = token.NewFallbackProvider(pageSource, detector, logger)
	}
	provider := token.NewChainProvider(vector, fallback, logger)

	adapter := blocks.NewAdapter(cfg.Extraction.RelationTolerance)
	assembler := extract.NewAssembler(ident.NewGenerator(cfg.Extraction.BucketSizePX), logger)

	svc := service.NewExtractionService(
		provider, adapter, assembler, objectRepo, indexRepo, cfg.Queue.Concurrency, logger)

	stats, err := svc.Run(context.Background(), service.ExtractionRequest{
		ProjectID:   projectID,
		Pages:       pages,
		RawPayloads: rawPayloads,
		Type:        objType,
		Policy:      policy,
	})
	if err != nil {
		return fmt.Errorf("extraction run failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

// readPages loads the page reference list and stamps the project ID on
// entries that omit it.
func readPages(path string, projectID uuid.UUID) ([]domain.PageRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pages: %w", err)
	}
	var pages []domain.PageRef
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("decoding pages: %w", err)
	}
	for i := range pages {
		if pages[i].ProjectID == uuid.Nil {
			pages[i].ProjectID = projectID
		}
	}
	return pages, nil
}

func parseObjectType(s string) (domain.ObjectType, error) {
	switch domain.ObjectType(s) {
	case domain.TypeRoom, domain.TypeDoor, domain.TypeScheduleTable:
		return domain.ObjectType(s), nil
	default:
		return "", fmt.Errorf("invalid -type %q", s)
	}
}

func parsePolicy(s string) (domain.ExtractionPolicy, error) {
	switch domain.ExtractionPolicy(s) {
	case domain.PolicyConservative, domain.PolicyRelaxed:
		return domain.ExtractionPolicy(s), nil
	default:
		return "", fmt.Errorf("invalid -policy %q", s)
	}
}

func newLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}
