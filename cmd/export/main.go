// Command export writes a project's extracted objects to an Excel
// workbook, optionally uploading it to object storage.
//
// Usage:
//
//	export -project <uuid> [-name "Building A"] [-out objects.xlsx] [-upload]
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"plansift/internal/config"
	"plansift/internal/port"
	"plansift/internal/repository/postgres"
	s3storage "plansift/internal/storage/s3"
	"plansift/internal/xlsxexport"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		projectArg = flag.String("project", "", "project UUID")
		nameArg    = flag.String("name", "", "project name used in the generated filename")
		outArg     = flag.String("out", "", "output path; defaults to a name+date filename")
		uploadArg  = flag.Bool("upload", false, "also upload the workbook to the configured bucket")
	)
	flag.Parse()

	projectID, err := uuid.Parse(*projectArg)
	if err != nil {
		return fmt.Errorf("invalid -project: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	objects, err := postgres.NewObjectRepo(db).ListByProject(context.Background(), projectID)
	if err != nil {
		return fmt.Errorf("listing project objects: %w", err)
	}

	w, err := xlsxexport.NewWriter()
	if err != nil {
		return err
	}
	if err := w.WriteObjects(objects); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := w.Flush(&buf); err != nil {
		return err
	}

	name := *nameArg
	if name == "" {
		name = projectID.String()
	}
	outPath := *outArg
	if outPath == "" {
		outPath = xlsxexport.BuildFilename(name)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	log.Printf("wrote %d objects to %s", len(objects), outPath)

	if *uploadArg {
		s3Client, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		key := fmt.Sprintf("projects/%s/exports/%s", projectID, xlsxexport.BuildFilename(name))
		out, err := s3Client.Upload(context.Background(), port.UploadInput{
			Bucket:      cfg.S3.Bucket,
			Key:         key,
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		})
		if err != nil {
			return fmt.Errorf("uploading workbook: %w", err)
		}
		log.Printf("uploaded export to %s", out.Location)
	}

	return nil
}
