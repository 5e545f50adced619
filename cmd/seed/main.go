package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"legal-assistant-be/internal/config"
	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	seedFile  string
	batchSize int
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the legal corpus (qanon) from a CSV file with title,text columns",
	RunE:  runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&seedFile, "file", "f", "data/qanon.csv", "CSV file with a title,text header")
	rootCmd.Flags().IntVar(&batchSize, "batch", 500, "rows per transaction")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Seed failed: %v", err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		return errors.New("DB_CONNECTION_STRING is not set")
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch must be positive, got %d", batchSize)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	f, err := os.Open(seedFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", seedFile, err)
	}
	defer f.Close()

	color.Cyan("🚀 Seeding legal corpus from %s", seedFile)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	factory := unitofwork.NewRepositoryFactory(db)
	total := 0
	err = readCorpus(f, batchSize, func(docs []*entity.LegalDocument) error {
		if err := insertBatch(ctx, factory, docs); err != nil {
			return err
		}
		total += len(docs)
		color.Green("  inserted %d rows (total %d)", len(docs), total)
		return nil
	})
	if err != nil {
		return err
	}

	color.Green("✅ Seed complete: %d documents", total)
	return nil
}

func insertBatch(ctx context.Context, factory unitofwork.RepositoryFactory, docs []*entity.LegalDocument) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer uow.Rollback()

	if err := uow.LegalDocumentRepository().CreateBulk(ctx, docs); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return uow.Commit()
}

// readCorpus streams the CSV in batches. The header must name a title (or
// titl) column and a text column; other columns are ignored.
func readCorpus(r io.Reader, size int, flush func([]*entity.LegalDocument) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	titleCol, textCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "title", "titl":
			titleCol = i
		case "text":
			textCol = i
		}
	}
	if titleCol < 0 || textCol < 0 {
		return fmt.Errorf("header must contain title and text columns, got %v", header)
	}

	batch := make([]*entity.LegalDocument, 0, size)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if titleCol >= len(record) || textCol >= len(record) {
			color.Yellow("  skipping line %d: missing columns", line)
			continue
		}

		title := strings.TrimSpace(record[titleCol])
		text := strings.TrimSpace(record[textCol])
		if title == "" && text == "" {
			continue
		}

		batch = append(batch, &entity.LegalDocument{
			Id:        uuid.New(),
			Title:     title,
			Text:      text,
			CreatedAt: time.Now(),
		})
		if len(batch) == size {
			if err := flush(batch); err != nil {
				return err
			}
			batch = make([]*entity.LegalDocument, 0, size)
		}
	}

	if len(batch) > 0 {
		return flush(batch)
	}
	return nil
}
