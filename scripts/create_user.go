// Command create_user seeds an account directly in the database. It is the
// only way to create the first admin.
//
//	go run scripts/create_user.go -name "Owner" -mobile 9876543210 -password secret
//	go run scripts/create_user.go -role delivery_boy -name "Ravi" -mobile 9123456789
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"aquagem-backend/internal/config"
	"aquagem-backend/internal/db"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/repositories"
	"aquagem-backend/internal/services"
)

func main() {
	role := flag.String("role", models.RoleAdmin, "admin or delivery_boy")
	name := flag.String("name", "", "display name")
	mobile := flag.String("mobile", "", "10 digit mobile number")
	whatsApp := flag.String("whatsapp", "", "WhatsApp number if different from mobile")
	password := flag.String("password", "", "password (required for admins)")
	flag.Parse()

	if *role != models.RoleAdmin && *role != models.RoleDeliveryBoy {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg := config.Load()
	pool := db.Connect(cfg)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := services.NewUserService(repositories.NewUserRepository(pool), nil)
	u := &models.User{
		Role:     *role,
		Name:     *name,
		Mobile:   *mobile,
		WhatsApp: *whatsApp,
		IsActive: true,
	}
	if err := users.CreateUser(ctx, u, *password); err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("Created %s #%d (%s, %s)\n", u.Role, u.ID, u.Name, u.Mobile)
}
