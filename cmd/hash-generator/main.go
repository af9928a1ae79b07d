// Command hash-generator prints bcrypt hashes for the passwords given as
// arguments, for seeding fixture accounts. Each password must satisfy the
// account password rules.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-cost n] password...")
		os.Exit(2)
	}

	hasher := auth.NewBcryptHasher(*cost)
	failed := false
	for _, password := range flag.Args() {
		if err := domain.ValidatePassword(password); err != nil {
			fmt.Fprintf(os.Stderr, "rejected %q: %v\n", password, err)
			failed = true
			continue
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error hashing %q: %v\n", password, err)
			failed = true
			continue
		}
		fmt.Printf("Password: %s\nHash: %s\n\n", password, hash)
	}
	if failed {
		os.Exit(1)
	}
}
