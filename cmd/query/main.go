// Command query resolves a lookup against a project's extracted objects.
// Matches print as JSON; an ambiguous lookup returns every candidate with
// per-object reasons rather than guessing.
//
// Usage:
//
//	query -project <uuid> [-number 203] [-name CLASSE] [-type room]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plansift/internal/config"
	"plansift/internal/domain"
	"plansift/internal/repository/postgres"
	"plansift/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		projectArg = flag.String("project", "", "project UUID")
		numberArg  = flag.String("number", "", "printed room number")
		nameArg    = flag.String("name", "", "printed room name")
		typeArg    = flag.String("type", "", "object type")
	)
	flag.Parse()

	projectID, err := uuid.Parse(*projectArg)
	if err != nil {
		return fmt.Errorf("invalid -project: %w", err)
	}

	criteria := domain.QueryCriteria{}
	if *numberArg != "" {
		criteria.RoomNumber = numberArg
	}
	if *nameArg != "" {
		criteria.RoomName = nameArg
	}
	if *typeArg != "" {
		criteria.Type = typeArg
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	svc := service.NewQueryService(postgres.NewObjectRepo(db), postgres.NewIndexRepo(db), logger)
	result, err := svc.Query(context.Background(), projectID, criteria)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
