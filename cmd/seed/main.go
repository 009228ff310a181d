package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/scorecard/api/internal/config"
	"github.com/scorecard/api/internal/database"
	"github.com/scorecard/api/internal/model"
	"github.com/scorecard/api/internal/parser"
	"github.com/scorecard/api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Parse command line flags
	metricPath := flag.String("metric", "data/typology.xml", "Path to the typology metric file")
	superadmin := flag.String("superadmin", "", "Username of the superadmin account to create (optional)")
	password := flag.String("password", "", "Password for the superadmin account")
	email := flag.String("email", "", "Email for the superadmin account")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migration
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()

	// Import the typology catalogue
	data, err := os.ReadFile(*metricPath)
	if err != nil {
		log.Fatalf("Failed to read typology file: %v", err)
	}

	flat, err := parser.ParseMetricXML(data)
	if err != nil {
		log.Fatalf("Failed to parse typology file: %v", err)
	}

	issues := make([]model.Issue, 0, len(flat))
	for _, entry := range flat {
		issues = append(issues, model.Issue{
			ID:          entry.Issue,
			Parent:      entry.Parent,
			Name:        entry.Name,
			Description: entry.Description,
			Notes:       entry.Notes,
			Examples:    entry.Examples,
		})
	}

	issueStore := repository.NewIssueStore(db)
	if err := issueStore.ReplaceCatalogue(ctx, issues); err != nil {
		log.Fatalf("Failed to import typology: %v", err)
	}

	log.Printf("Imported %d typology issues from %s", len(issues), *metricPath)

	// Optionally ensure a superadmin account exists
	if *superadmin == "" {
		return
	}

	if *password == "" || *email == "" {
		log.Fatal("Creating a superadmin requires -password and -email")
	}

	userStore := repository.NewUserStore(db)
	existing, err := userStore.GetByUsername(ctx, *superadmin)
	if err != nil {
		log.Fatalf("Failed to look up superadmin: %v", err)
	}
	if existing != nil {
		log.Printf("Superadmin %q already exists, skipping", *superadmin)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := model.User{
		Username: *superadmin,
		Password: string(hash),
		Email:    *email,
		Name:     *superadmin,
		Role:     model.RoleSuperadmin,
		Verified: true,
	}
	if err := userStore.Create(ctx, &user); err != nil {
		log.Fatalf("Failed to create superadmin: %v", err)
	}

	log.Printf("Created superadmin %q (id %d)", user.Username, user.ID)
}
