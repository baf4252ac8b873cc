// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"slice/internal/app"
	appctx "slice/internal/core/context"
	"slice/internal/core/id"
	"slice/internal/core/security"
	"slice/internal/core/types"
	"slice/internal/domain/catalog"
	"slice/internal/domain/procurement"
	"slice/internal/domain/recipe"
	"slice/internal/infrastructure/config"
	"slice/internal/infrastructure/storage/postgres"
	"slice/pkg/logger"
)

const seedUserID = "seed"

type itemSeed struct {
	name     string
	category string
	bulkUnit string
	baseUnit string
	ratio    string
	// opening stock in bulk units and the price per bulk unit
	openingQty string
	unitPrice  string
}

type productSeed struct {
	name     string
	category string
	price    string
	recipe   map[string]string
}

var items = []itemSeed{
	{"Pizza Dough", "Dough", "tray", "pcs", "20", "10", "40"},
	{"Mozzarella", "Cheese", "block", "g", "2500", "8", "35"},
	{"Tomato Sauce", "Sauces", "can", "ml", "3000", "6", "12"},
	{"Pepperoni", "Meat", "pack", "g", "1000", "6", "18"},
	{"Mushrooms", "Vegetables", "box", "g", "2000", "4", "9"},
	{"Pizza Box", "Packaging", "bundle", "pcs", "50", "4", "15"},
}

var products = []productSeed{
	{"Margherita", "Pizza", "9.50", map[string]string{
		"Pizza Dough": "1", "Mozzarella": "150", "Tomato Sauce": "120", "Pizza Box": "1",
	}},
	{"Pepperoni", "Pizza", "11.00", map[string]string{
		"Pizza Dough": "1", "Mozzarella": "150", "Tomato Sauce": "120", "Pepperoni": "80", "Pizza Box": "1",
	}},
	{"Funghi", "Pizza", "10.50", map[string]string{
		"Pizza Dough": "1", "Mozzarella": "130", "Tomato Sauce": "100", "Mushrooms": "90", "Pizza Box": "1",
	}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	ctx = appctx.WithUser(ctx, &appctx.UserContext{
		UserID:   seedUserID,
		Username: "seed",
		Role:     appctx.RoleAdmin,
	})

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool).WithStatementTimeout(cfg.Database.StatementTimeout)
	deps, err := app.Postgres(txm)
	if err != nil {
		log.Fatalw("failed to wire repositories", "error", err)
	}
	deps.LowStockThreshold = types.NewQuantityFromFloat64(cfg.Inventory.DefaultLowStockThreshold)
	svc := app.NewServices(deps)

	log.Info("connected to database")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, svc, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	if err := printAdminToken(cfg, log); err != nil {
		log.Fatalw("failed to issue admin token", "error", err)
	}
	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, svc *app.Services, log *logger.Logger) error {
	existing, err := svc.Catalog.ListBranches(ctx)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}
	if len(existing) > 0 {
		log.Infow("demo data already present, skipping", "branches", len(existing))
		return nil
	}

	branches := []*catalog.Branch{
		{Name: "HQ Commissary", Location: "Industrial Park 4", IsHQ: true},
		{Name: "Downtown", Location: "12 Market Street"},
		{Name: "Riverside", Location: "3 Quay Road"},
	}
	for _, b := range branches {
		if err := svc.Catalog.CreateBranch(ctx, b); err != nil {
			return fmt.Errorf("create branch %q: %w", b.Name, err)
		}
		log.Infow("branch created", "name", b.Name, "id", b.ID)
	}

	byName := make(map[string]catalog.Item, len(items))
	for _, s := range items {
		item := &catalog.Item{
			Name:            s.name,
			Category:        s.category,
			BulkUnit:        s.bulkUnit,
			BaseUnit:        s.baseUnit,
			ConversionRatio: decimal.RequireFromString(s.ratio),
		}
		if err := svc.Catalog.AddItem(ctx, item); err != nil {
			return fmt.Errorf("create item %q: %w", s.name, err)
		}
		byName[s.name] = *item
	}
	log.Infow("items created", "count", len(byName))

	for _, s := range products {
		p := &catalog.Product{
			Name:        s.name,
			Category:    s.category,
			BasePrice:   types.MustMoney(s.price),
			IsAvailable: true,
		}
		if err := svc.Catalog.AddProduct(ctx, p); err != nil {
			return fmt.Errorf("create product %q: %w", s.name, err)
		}

		lines := make([]recipe.LineInput, 0, len(s.recipe))
		for itemName, qty := range s.recipe {
			item, ok := byName[itemName]
			if !ok {
				return fmt.Errorf("recipe for %q references unknown item %q", s.name, itemName)
			}
			lines = append(lines, recipe.LineInput{ItemID: item.ID, RequiredQty: types.MustQuantity(qty)})
		}
		if _, err := svc.Recipes.SetRecipe(ctx, p.ID, lines); err != nil {
			return fmt.Errorf("set recipe for %q: %w", s.name, err)
		}
	}
	log.Infow("products created", "count", len(products))

	// The HQ gets a larger opening delivery; shops start with a single one.
	for _, b := range branches {
		multiplier := int64(1)
		if b.IsHQ {
			multiplier = 3
		}
		if err := openingPurchase(ctx, svc, b.ID, byName, multiplier); err != nil {
			return fmt.Errorf("opening purchase for %q: %w", b.Name, err)
		}
	}
	return nil
}

func openingPurchase(ctx context.Context, svc *app.Services, branchID id.ID, byName map[string]catalog.Item, multiplier int64) error {
	in := procurement.Input{
		BranchID: branchID,
		Supplier: "Opening Stock",
		UserID:   seedUserID,
	}
	for _, s := range items {
		qty, err := types.MustQuantity(s.openingQty).MulInt(multiplier)
		if err != nil {
			return fmt.Errorf("opening quantity for %q: %w", s.name, err)
		}
		in.Lines = append(in.Lines, procurement.LineInput{
			ItemID:    byName[s.name].ID,
			Quantity:  qty,
			UnitPrice: types.MustMoney(s.unitPrice),
		})
	}
	purchase, err := svc.Procurement.ProcessPurchase(ctx, in)
	if err != nil {
		return err
	}
	logger.Info(ctx, "opening purchase received",
		"branch_id", branchID,
		"number", purchase.Number,
		"total", purchase.TotalAmount,
	)
	return nil
}

func printAdminToken(cfg *config.Config, log *logger.Logger) error {
	if cfg.JWT.Secret == "" {
		log.Warn("jwt secret not configured, no admin token issued")
		return nil
	}
	tokens, err := security.NewTokenService(security.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TokenTTL,
	})
	if err != nil {
		return err
	}
	token, expires, err := tokens.Issue(appctx.UserContext{
		UserID:    id.New().String(),
		Username:  "admin",
		Role:      appctx.RoleAdmin,
		SessionID: id.New().String(),
	})
	if err != nil {
		return err
	}
	fmt.Printf("\nAdmin token (expires %s):\n%s\n\n", expires.Format("2006-01-02 15:04"), token)
	return nil
}
