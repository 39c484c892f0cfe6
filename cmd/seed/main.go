// Package main provides a CLI tool for seeding the database with demo data:
// a central warehouse catalog, a couple of branches and an opening purchase
// distributed across them.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/catalogs/variant"
	"almacen/internal/domain/documents"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/posting"
	"almacen/internal/infrastructure/storage/postgres"
	"almacen/internal/infrastructure/storage/postgres/catalog_repo"
	"almacen/internal/infrastructure/storage/postgres/document_repo"
	"almacen/internal/infrastructure/storage/postgres/ledger_repo"
	"almacen/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	branchRepo := catalog_repo.NewBranchRepo(txm)
	branchSvc := branch.NewService(branchRepo)
	variantSvc := variant.NewService(catalog_repo.NewVariantRepo(txm))
	engine := posting.NewEngine(ledger_repo.NewRepo(txm), catalog_repo.NewVariantRepo(txm))
	purchaseSvc := purchase.NewService(document_repo.NewPurchaseRepo(txm), branchRepo, engine, txm)

	existing, err := branchSvc.List(ctx)
	if err != nil {
		log.Fatalw("failed to check branches", "error", err)
	}
	if len(existing) > 0 {
		log.Infow("database already seeded, nothing to do", "branches", len(existing))
		return
	}

	branches := make([]*branch.Branch, 0, 2)
	for _, name := range []string{"Centro", "Norte"} {
		b := branch.NewBranch(name)
		if err := branchSvc.Create(ctx, b); err != nil {
			log.Fatalw("failed to create branch", "name", name, "error", err)
		}
		branches = append(branches, b)
	}

	variants := make([]*variant.Variant, 0, 3)
	for _, in := range []variant.CreateInput{
		{
			ProductName:      "Whey Protein",
			Brand:            "Optimum",
			Category:         "protein",
			Flavor:           "chocolate",
			Size:             "2lb",
			SKU:              "WP-CHOC-2",
			Cost:             types.MustMoney("28.50"),
			SalePrice:        types.MustMoney("45.00"),
			MinimumThreshold: 10,
		},
		{
			ProductName:      "Whey Protein",
			Brand:            "Optimum",
			Category:         "protein",
			Flavor:           "vanilla",
			Size:             "2lb",
			SKU:              "WP-VAN-2",
			Cost:             types.MustMoney("28.50"),
			SalePrice:        types.MustMoney("45.00"),
			MinimumThreshold: 10,
		},
		{
			ProductName:      "Creatine Monohydrate",
			Brand:            "MuscleTech",
			Category:         "creatine",
			Size:             "300g",
			SKU:              "CREA-300",
			Cost:             types.MustMoney("12.00"),
			SalePrice:        types.MustMoney("22.00"),
			MinimumThreshold: 5,
		},
	} {
		v, err := variantSvc.Create(ctx, in)
		if err != nil {
			log.Fatalw("failed to create variant", "product", in.ProductName, "error", err)
		}
		variants = append(variants, v)
	}

	// Opening purchase: part of each line goes to the branches, the rest
	// stays in the central warehouse.
	lines := make([]purchase.Line, 0, len(variants))
	for _, v := range variants {
		lines = append(lines, purchase.Line{
			VariantID: v.ID,
			Quantity:  30,
			UnitCost:  v.Cost,
			Allocations: []purchase.Allocation{
				{BranchID: branches[0].ID, Quantity: 10},
				{BranchID: branches[1].ID, Quantity: 8},
			},
		})
	}

	p, err := purchaseSvc.Create(ctx, purchase.CreateInput{
		SupplierName:  "Distribuidora Fitness SA",
		InvoiceNumber: "A-0001",
		Date:          time.Now().UTC(),
		PaymentMethod: documents.PaymentBankTransfer,
		Notes:         "opening stock",
		Lines:         lines,
	})
	if err != nil {
		log.Fatalw("failed to create opening purchase", "error", err)
	}

	log.Infow("seeding completed successfully",
		"branches", len(branches), "variants", len(variants), "purchase_id", p.ID)
}
