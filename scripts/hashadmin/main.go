package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Quick utility to generate the bcrypt hash for ADMIN_PASSWORD_HASH
// Usage: go run ./scripts/hashadmin <password>
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/hashadmin <password>")
		os.Exit(1)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Bcrypt Hash: %s\n", string(hashedPassword))
	fmt.Printf("\nSet it on the app with:\n")
	fmt.Printf("heroku config:set ADMIN_PASSWORD_HASH='%s'\n", string(hashedPassword))
}
