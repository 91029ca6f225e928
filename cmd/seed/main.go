// Command seed bootstraps the canteen's vendors, admin account and menu.
// Running it again leaves existing rows untouched.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/canteenrush/canteenrush/internal/repository"
)

func main() {
	var (
		databaseURL    = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		vendorPassword = flag.String("vendor-password", "123", "Password for every seeded vendor")
		adminUsername  = flag.String("admin-username", "admin", "Admin username")
		adminPassword  = flag.String("admin-password", "admin123", "Admin password")
		migrateFirst   = flag.Bool("migrate", true, "Apply pending migrations before seeding")
		format         = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	if *migrateFirst {
		if err := repository.RunMigrations(*databaseURL); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	report, err := seed(ctx, repo, options{
		VendorPassword: *vendorPassword,
		AdminUsername:  *adminUsername,
		AdminPassword:  *adminPassword,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("vendors: %d created, %d existing\n", report.VendorsCreated, report.VendorsExisting)
		fmt.Printf("menu items: %d created, %d existing\n", report.ItemsCreated, report.ItemsExisting)
		fmt.Printf("admin %q created: %v\n", *adminUsername, report.AdminCreated)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
