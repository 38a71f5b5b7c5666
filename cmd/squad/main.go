package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"storysquad/internal/config"
	"storysquad/internal/credentials"
	"storysquad/internal/database"
	"storysquad/internal/models"
	"storysquad/internal/remote"
	"storysquad/internal/repository"
	"storysquad/internal/service"
)

func main() {
	if err := godotenv.Load(); err == nil {
		fmt.Println("loaded .env")
	}

	cfg := config.Load()

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store := repository.NewStore(db)
	creds := credentials.NewCache(store.Settings())

	client, err := remote.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, log)
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	sync := service.NewSyncService(store, client, creds, log)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if err := dispatch(ctx, sync, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func dispatch(ctx context.Context, sync *service.SyncService, command string, args []string) error {
	switch command {
	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		email := fs.String("email", "", "guardian email")
		password := fs.String("password", "", "password")
		name := fs.String("name", "", "guardian name")
		terms := fs.Bool("accept-terms", false, "accept the terms of service")
		fs.Parse(args)

		res := <-sync.RegisterAccount(ctx, *email, *password, *terms, *name)
		if res.Err != nil {
			return res.Err
		}
		fmt.Println("registered; token stored")
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "guardian email")
		password := fs.String("password", "", "password")
		fs.Parse(args)

		res := <-sync.LoginAccount(ctx, *email, *password)
		if res.Err != nil {
			return res.Err
		}
		fmt.Println("logged in; token stored")
		return nil

	case "restore":
		res := <-sync.RestoreSession(ctx)
		if res.Err != nil {
			return res.Err
		}
		fmt.Printf("session restored for %s (account %d)\n", res.Value.Email, res.Value.ID)
		return nil

	case "whoami":
		account, err := currentAccount(ctx, sync)
		if err != nil {
			return err
		}
		res := <-sync.RefreshAccountFromServer(ctx, account)
		if res.Err != nil {
			return res.Err
		}
		fmt.Printf("account %d: %s\n", res.Value.ID, res.Value.Email)
		return nil

	case "add-child":
		fs := flag.NewFlagSet("add-child", flag.ExitOnError)
		name := fs.String("name", "", "child name")
		pin := fs.Int("pin", 0, "child pin")
		grade := fs.Int("grade", 0, "grade level")
		cohort := fs.String("cohort", "", "cohort")
		dyslexia := fs.Bool("dyslexia", false, "dyslexia-friendly preference")
		fs.Parse(args)

		account, err := currentAccount(ctx, sync)
		if err != nil {
			return err
		}
		dep, err := sync.CreateDependent(account, *name, *pin, *grade, *cohort, *dyslexia)
		if err != nil {
			return err
		}
		fmt.Printf("created child %d (%s) with avatar %s\n", dep.ID, dep.Name, dep.Avatar)
		return nil

	case "list-children":
		account, err := currentAccount(ctx, sync)
		if err != nil {
			return err
		}
		deps, err := sync.Dependents(account)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			fmt.Printf("%d\t%s\tgrade %d\t%s\n", dep.ID, dep.Name, dep.Grade, dep.Avatar)
		}
		return nil

	case "update-child":
		fs := flag.NewFlagSet("update-child", flag.ExitOnError)
		id := fs.Int64("id", 0, "child id")
		username := fs.String("username", "", "username (required on the service)")
		grade := fs.Int("grade", -1, "grade level")
		dyslexia := fs.Bool("dyslexia", false, "dyslexia-friendly preference")
		fs.Parse(args)

		account, err := currentAccount(ctx, sync)
		if err != nil {
			return err
		}
		deps, err := sync.Dependents(account)
		if err != nil {
			return err
		}
		var dep *models.Dependent
		for i := range deps {
			if deps[i].ID == *id {
				dep = &deps[i]
				break
			}
		}
		if dep == nil {
			return fmt.Errorf("no child with id %d", *id)
		}

		overrides := service.DependentOverrides{}
		if *username != "" {
			overrides.Username = username
		}
		if *grade >= 0 {
			overrides.Grade = grade
		}
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "dyslexia" {
				overrides.DyslexiaPreference = dyslexia
			}
		})

		res := <-sync.UpdateDependent(ctx, dep, overrides)
		if res.Err != nil {
			return res.Err
		}
		fmt.Printf("updated child %d (username %s)\n", res.Value.ID, res.Value.Username)
		return nil

	case "delete-child":
		fs := flag.NewFlagSet("delete-child", flag.ExitOnError)
		id := fs.Int64("id", 0, "child id")
		fs.Parse(args)
		return sync.DeleteDependent(*id)

	case "delete-account":
		account, err := currentAccount(ctx, sync)
		if err != nil {
			return err
		}
		return sync.DeleteAccount(account.ID)

	case "logout":
		sync.LogOut()
		fmt.Println("logged out")
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// currentAccount resolves the guardian account from the persisted session
func currentAccount(ctx context.Context, sync *service.SyncService) (*models.Account, error) {
	res := <-sync.RestoreSession(ctx)
	return res.Value, res.Err
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: squad <command> [flags]

commands:
  register        create a guardian account on the service
  login           authenticate and resolve the local account
  restore         silently restore the persisted session
  whoami          refresh the account from the service
  add-child       create a child profile (local only)
  list-children   list the account's child profiles
  update-child    push a child profile to the service
  delete-child    delete a child profile
  delete-account  delete the account and all its children
  logout          drop active tokens (persisted credentials survive)`)
}
