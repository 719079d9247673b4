// Command hash-generator produces a bcrypt hash for a password supplied
// on the command line. Useful when seeding accounts by hand in SQL.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/taskdeck/taskdeck-api/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", 0, "bcrypt cost factor (0 uses the default)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-cost N] <password>")
		os.Exit(2)
	}

	hash, err := auth.HashPassword(flag.Arg(0), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
