package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/vedran77/gtflow/internal/auth"
	"github.com/vedran77/gtflow/internal/config"
	"github.com/vedran77/gtflow/internal/repository/rest"
)

const usage = `gtflow - ground-truth annotation platform client

Usage:
  gtflow login              authenticate and store tokens
  gtflow logout             drop stored tokens
  gtflow whoami             show the authenticated user
  gtflow users              list users
  gtflow projects           list / create / inspect projects
  gtflow documents          list / upload documents
  gtflow tasks              list / create / update tasks
  gtflow chat               interactive chat
  gtflow view               get or set the list view mode (grid | table)
`

type app struct {
	cfg   *config.Config
	store *auth.Store
	api   *rest.Client
}

func main() {
	log.SetFlags(0)

	// Optional; the CLI works from plain env vars too.
	_ = godotenv.Load()

	cfg := config.Load()

	path := cfg.CredsPath
	if path == "" {
		var err error
		path, err = auth.DefaultPath()
		if err != nil {
			log.Fatalf("resolving credential path: %v", err)
		}
	}

	store, err := auth.Open(path)
	if err != nil {
		log.Fatal(err)
	}

	a := &app{
		cfg:   cfg,
		store: store,
		api:   rest.NewClient(cfg.APIURL, store),
	}

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "login":
		err = a.cmdLogin(args)
	case "logout":
		err = a.cmdLogout()
	case "whoami":
		err = a.cmdWhoami()
	case "users":
		err = a.cmdUsers()
	case "projects":
		err = a.cmdProjects(args)
	case "documents":
		err = a.cmdDocuments(args)
	case "tasks":
		err = a.cmdTasks(args)
	case "chat":
		err = a.cmdChat(args)
	case "view":
		err = a.cmdView(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

// selfID extracts the user id from the stored access token without a
// round trip.
func (a *app) selfID() (int64, error) {
	token := a.store.Access()
	if token == "" {
		return 0, fmt.Errorf("not logged in, run: gtflow login")
	}
	return auth.Subject(token)
}
