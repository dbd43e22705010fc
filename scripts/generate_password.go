// scripts/generate_password.go
//
// Prints a bcrypt hash accepted by the credentials table, for seeding
// accounts by hand. The password must satisfy the registration policy.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/generate_password.go <password> [cost]")
	}

	password := os.Args[1]
	cost := 12
	if len(os.Args) > 2 {
		c, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("Invalid cost %q: %v", os.Args[2], err)
		}
		cost = c
	}

	passwords := auth.NewPasswordManager(&config.Config{
		Security: config.SecurityConfig{BcryptCost: cost},
	})

	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.Fatal("Error generating hash:", err)
	}

	fmt.Printf("Password: %s\n", password)
	fmt.Printf("Hash: %s\n", hash)

	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.Fatal("Hash verification failed:", err)
	}

	fmt.Println("✅ Hash verified successfully!")
}
