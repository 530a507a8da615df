// seed inserts development sample data for local testing. Idempotent: skips
// all inserts when the dev admin (admin@ppfops.dev) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	clientdomain "ppf-ops-platform/internal/clientrec/domain"
	clientrepo "ppf-ops-platform/internal/clientrec/repository"
	"ppf-ops-platform/internal/config"
	"ppf-ops-platform/internal/db"
	identitydomain "ppf-ops-platform/internal/identity/domain"
	identityrepo "ppf-ops-platform/internal/identity/repository"
	notificationdomain "ppf-ops-platform/internal/notification/domain"
	notificationrepo "ppf-ops-platform/internal/notification/repository"
	"ppf-ops-platform/internal/security"
	userdomain "ppf-ops-platform/internal/user/domain"
	userrepo "ppf-ops-platform/internal/user/repository"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
	workorderrepo "ppf-ops-platform/internal/workorder/repository"
)

const devPassword = "Dev-password-123!"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)
	identities := identityrepo.NewPostgresRepository(database)
	clients := clientrepo.NewPostgresRepository(database)
	workOrders := workorderrepo.NewPostgresRepository(database)
	notifications := notificationrepo.NewPostgresRepository(database)

	existing, err := users.GetByEmail(ctx, "admin@ppfops.dev")
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if existing != nil {
		log.Println("seed: dev data already present, nothing to do")
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash password: %v", err)
	}

	now := time.Now().UTC()
	seedUser := func(email, name string, role userdomain.Role) *userdomain.User {
		u := &userdomain.User{
			ID:        uuid.New().String(),
			Email:     email,
			Name:      name,
			Role:      role,
			Status:    userdomain.UserStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed: create user %s: %v", email, err)
		}
		err := identities.Create(ctx, &identitydomain.Identity{
			ID:           uuid.New().String(),
			UserID:       u.ID,
			Provider:     identitydomain.IdentityProviderLocal,
			ProviderID:   email,
			PasswordHash: hash,
			CreatedAt:    now,
		})
		if err != nil {
			log.Fatalf("seed: create identity %s: %v", email, err)
		}
		return u
	}

	seedUser("admin@ppfops.dev", "Dev Admin", userdomain.RoleAdmin)
	manager := seedUser("manager@ppfops.dev", "Marina Duarte", userdomain.RoleManager)
	tech := seedUser("tech@ppfops.dev", "Rafael Lima", userdomain.RoleTechnician)
	seedUser("viewer@ppfops.dev", "Front Desk", userdomain.RoleViewer)

	client := &clientdomain.Client{
		ID:    uuid.New().String(),
		Name:  "Aline Costa",
		Phone: "+55 11 98888-7777",
		Email: "aline@example.com",
		Vehicles: []clientdomain.Vehicle{
			{ID: uuid.New().String(), Model: "Porsche 911", Plate: "ABC1D23"},
			{ID: uuid.New().String(), Model: "BMW M3", Plate: "XYZ9K88"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range client.Vehicles {
		client.Vehicles[i].ClientID = client.ID
	}
	if err := clients.Create(ctx, client); err != nil {
		log.Fatalf("seed: create client: %v", err)
	}

	scheduled := now.Add(48 * time.Hour)
	order := &workorderdomain.WorkOrder{
		ID:           uuid.New().String(),
		ClientID:     client.ID,
		TechnicianID: tech.ID,
		VehicleModel: "Porsche 911",
		PPFZones:     []string{"full_front", "mirrors"},
		Status:       workorderdomain.StatusScheduled,
		Priority:     workorderdomain.PriorityHigh,
		Notes:        "Customer wants the edges wrapped.",
		ScheduledAt:  &scheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := workOrders.Create(ctx, order); err != nil {
		log.Fatalf("seed: create work order: %v", err)
	}

	notice := &notificationdomain.Notification{
		ID:         uuid.New().String(),
		UserID:     tech.ID,
		Type:       notificationdomain.TypeWorkOrderAssigned,
		Title:      "New work order assigned",
		Message:    fmt.Sprintf("Porsche 911 for %s, scheduled %s", client.Name, scheduled.Format("Jan 2 15:04")),
		EntityType: "work_order",
		EntityID:   order.ID,
		EntityURL:  "/work-orders/" + order.ID,
		CreatedAt:  now,
	}
	if err := notifications.Create(ctx, notice); err != nil {
		log.Fatalf("seed: create notification: %v", err)
	}

	log.Printf("seed: created 4 users (password %q), client %s, work order %s for %s",
		devPassword, client.Name, order.ID, manager.Name)
}
