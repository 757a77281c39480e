package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
	"github.com/salescribe-team/salescribe/internal/infrastructure/database"
	"github.com/salescribe-team/salescribe/pkg/config"
	pkgjwt "github.com/salescribe-team/salescribe/pkg/jwt"
)

func main() {
	log.Println("🚀 Starting test users creation...")

	// Load configuration from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	log.Println("✅ Database connected successfully")

	// Initialize JWT manager
	jwtManager := pkgjwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	log.Println("🗑️  Cleaning up existing test users...")
	db.Where("phone_number LIKE ?", "+1999555%").Delete(&entities.PhoneNumberMapping{})
	db.Where("email LIKE ?", "%@test.local").Delete(&entities.Profile{})

	log.Println("🔑 Creating test team and tokens...")

	manager := &entities.Profile{
		ID:          uuid.New(),
		Role:        entities.RoleManager,
		Name:        "Morgan Manager",
		Email:       "morgan@test.local",
		CompanyName: "Test Sales Co",
	}
	if err := db.Create(manager).Error; err != nil {
		log.Fatalf("❌ Failed to create manager: %v", err)
	}

	reps := []struct {
		Name  string
		Email string
		Phone string
	}{
		{Name: "Riley Rep", Email: "riley@test.local", Phone: "+19995550101"},
		{Name: "Sam Seller", Email: "sam@test.local", Phone: "+19995550102"},
	}

	printToken := func(p *entities.Profile) {
		token, err := jwtManager.GenerateToken(p.ID, p.Email, string(p.Role))
		if err != nil {
			log.Printf("❌ Failed to generate token for %s: %v", p.Email, err)
			return
		}
		fmt.Printf("═══════════════════════════════════════════════════════\n")
		fmt.Printf("🟢 %s (%s)\n", p.Name, p.Role)
		fmt.Printf("Email:   %s\n", p.Email)
		fmt.Printf("User ID: %s\n", p.ID)
		fmt.Printf("\n📋 Access Token (Copy to Postman):\n%s\n\n", token)
	}

	printToken(manager)

	for _, rep := range reps {
		profile := &entities.Profile{
			ID:        uuid.New(),
			Role:      entities.RoleSalesRepresentative,
			ManagerID: &manager.ID,
			Name:      rep.Name,
			Email:     rep.Email,
		}
		if err := db.Create(profile).Error; err != nil {
			log.Printf("❌ Failed to create rep %s: %v", rep.Email, err)
			continue
		}

		mapping := &entities.PhoneNumberMapping{
			ID:          uuid.New(),
			PhoneNumber: rep.Phone,
			UserID:      profile.ID,
		}
		if err := db.Create(mapping).Error; err != nil {
			log.Printf("❌ Failed to map phone for %s: %v", rep.Email, err)
			continue
		}

		printToken(profile)
	}

	// Give the manager a default report template so extraction kicks in
	template := &entities.UserTemplate{
		ID:     uuid.New(),
		UserID: manager.ID,
		Name:   "Daily sales report",
		Fields: []entities.TemplateField{
			{Name: "client_name", Type: entities.FieldTypeText, Required: true},
			{Name: "deal_value", Type: entities.FieldTypeNumber, Required: true},
			{Name: "follow_up_date", Type: entities.FieldTypeDate, Required: false},
			{Name: "contact_email", Type: entities.FieldTypeEmail, Required: false},
		},
		IsDefault: true,
	}
	if err := db.Create(template).Error; err != nil {
		log.Printf("❌ Failed to create default template: %v", err)
	}

	log.Println("✅ All test users created successfully!")
	log.Println("💡 Usage:")
	log.Println("   1. Copy an Access Token above")
	log.Println("   2. In Postman, set header: Authorization: Bearer <access_token>")
	log.Println("   3. Token expiry:", cfg.JWT.Expiry)
	log.Println("🧹 To clean up, run: DELETE FROM profiles WHERE email LIKE '%@test.local'")
}
