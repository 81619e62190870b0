package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedProduct struct {
	name        string
	description string
	price       string
	imageURL    string
	stock       int
	category    string
}

var seedCategories = []string{"Electronics", "Clothing", "Books", "Home & Kitchen"}

var seedProducts = []seedProduct{
	{"Wireless Headphones", "Over-ear wireless headphones with noise cancellation", "79.99", "https://images.example.com/headphones.jpg", 25, "Electronics"},
	{"Mechanical Keyboard", "Tenkeyless mechanical keyboard with hot-swappable switches", "119.00", "https://images.example.com/keyboard.jpg", 14, "Electronics"},
	{"Cotton T-Shirt", "Plain crew-neck t-shirt in heavyweight cotton", "14.50", "https://images.example.com/tshirt.jpg", 120, "Clothing"},
	{"Denim Jacket", "Classic fit denim jacket with button front", "59.00", "https://images.example.com/jacket.jpg", 0, "Clothing"},
	{"The Pragmatic Programmer", "20th anniversary edition hardcover", "39.95", "https://images.example.com/pragprog.jpg", 8, "Books"},
	{"Cast Iron Skillet", "Pre-seasoned 10 inch cast iron skillet", "24.99", "https://images.example.com/skillet.jpg", 31, "Home & Kitchen"},
	{"French Press", "8-cup borosilicate glass french press", "21.00", "https://images.example.com/frenchpress.jpg", 17, "Home & Kitchen"},
}

func main() {
	// .env is optional; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()
	db := dbService.DB()

	if err := database.RunMigrations(db, "migrations", log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)

	seedUser(ctx, log, userRepo, "Admin", "admin@example.com", "admin123", domain.RoleAdmin)
	seedUser(ctx, log, userRepo, "Demo User", "user@example.com", "user1234", domain.RoleUser)

	categoryIDs := make(map[string]uuid.UUID, len(seedCategories))
	for _, name := range seedCategories {
		category, err := categoryRepo.FindByName(ctx, name)
		if err == nil {
			categoryIDs[name] = category.ID
			continue
		}
		if !errors.Is(err, repository.ErrCategoryNotFound) {
			log.Fatal("Failed to look up category", zap.String("name", name), zap.Error(err))
		}

		category = &domain.Category{
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := categoryRepo.Create(ctx, category); err != nil {
			log.Fatal("Failed to create category", zap.String("name", name), zap.Error(err))
		}
		categoryIDs[name] = category.ID
		log.Info("Category seeded", zap.String("name", name))
	}

	for _, p := range seedProducts {
		if _, err := productRepo.FindByName(ctx, p.name); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrProductNotFound) {
			log.Fatal("Failed to look up product", zap.String("name", p.name), zap.Error(err))
		}

		product := &domain.Product{
			ID:          uuid.New(),
			Name:        p.name,
			Description: p.description,
			Price:       decimal.RequireFromString(p.price),
			ImageURL:    p.imageURL,
			Stock:       p.stock,
			CategoryID:  categoryIDs[p.category],
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := productRepo.Create(ctx, product); err != nil {
			log.Fatal("Failed to create product", zap.String("name", p.name), zap.Error(err))
		}
		log.Info("Product seeded", zap.String("name", p.name))
	}

	log.Info("Seeding complete")
}

func seedUser(ctx context.Context, log *zap.Logger, repo repository.UserRepository, name, email, password string, role domain.Role) {
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		log.Fatal("Failed to look up user", zap.String("email", email), zap.Error(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.BcryptCost)
	if err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, user); err != nil {
		log.Fatal("Failed to create user", zap.String("email", email), zap.Error(err))
	}
	log.Info("User seeded", zap.String("email", email), zap.String("role", string(role)))
}
