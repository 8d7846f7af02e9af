package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/gtflow/internal/auth"
	"github.com/vedran77/gtflow/internal/domain"
	"github.com/vedran77/gtflow/internal/repository/rest"
	"github.com/vedran77/gtflow/pkg/validator"
)

const cmdTimeout = 30 * time.Second

func (a *app) cmdLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password (prompted when omitted)")
	fs.Parse(args)

	reader := bufio.NewReader(os.Stdin)
	if *username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		*username = strings.TrimSpace(line)
	}
	if *password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	if errs := validator.ValidateLogin(*username, *password); errs.HasErrors() {
		return fmt.Errorf("invalid input: %v", errs)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	user, err := a.api.Login(ctx, *username, *password)
	if err != nil {
		if errors.Is(err, rest.ErrInvalidCreds) {
			return errors.New("login failed: invalid username or password")
		}
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Email)
	return nil
}

func (a *app) cmdLogout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func (a *app) cmdWhoami() error {
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	user, err := rest.NewUserRepo(a.api).Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (#%d)\n", user.Username, user.ID)
	if name := user.FullName(); name != user.Username {
		fmt.Println(name)
	}
	fmt.Println(user.Email)
	return nil
}

func (a *app) cmdUsers() error {
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	users, err := rest.NewUserRepo(a.api).List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.FullName(), u.Email)
	}
	return w.Flush()
}

func (a *app) cmdProjects(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	repo := rest.NewProjectRepo(a.api)

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		projects, err := repo.List(ctx)
		if err != nil {
			return err
		}
		return a.printProjects(projects)

	case "create":
		fs := flag.NewFlagSet("projects create", flag.ExitOnError)
		name := fs.String("name", "", "project name")
		desc := fs.String("description", "", "project description")
		taskType := fs.String("task-type", domain.TaskTypeKeyValue, "annotation task type")
		fs.Parse(args)

		if errs := validator.ValidateProject(*name, *desc); errs.HasErrors() {
			return fmt.Errorf("invalid input: %v", errs)
		}
		created, err := repo.Create(ctx, &domain.Project{
			Name:        *name,
			Description: *desc,
			TaskType:    *taskType,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created project #%d %s\n", created.ID, created.Name)
		return nil

	case "stats":
		fs := flag.NewFlagSet("projects stats", flag.ExitOnError)
		id := fs.Int64("id", 0, "project id")
		fs.Parse(args)

		stats, err := repo.Stats(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("Documents: %d\nTasks: %d\nMembers: %d\nApproved: %d\n",
			stats.DocumentCount, stats.TaskCount, stats.MemberCount, stats.ApprovedCount)
		return nil

	case "members":
		fs := flag.NewFlagSet("projects members", flag.ExitOnError)
		id := fs.Int64("id", 0, "project id")
		add := fs.Int64("add", 0, "user id to add")
		remove := fs.Int64("remove", 0, "user id to remove")
		role := fs.String("role", domain.RoleMember, "role for -add")
		fs.Parse(args)

		if *add != 0 {
			return repo.AddMember(ctx, *id, *add, *role)
		}
		if *remove != 0 {
			return repo.RemoveMember(ctx, *id, *remove)
		}
		members, err := repo.ListMembers(ctx, *id)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tROLE")
		for _, m := range members {
			fmt.Fprintf(w, "%d\t%s\t%s\n", m.UserID, m.Username, m.Role)
		}
		return w.Flush()

	default:
		return fmt.Errorf("unknown projects subcommand %q (list, create, stats, members)", sub)
	}
}

func (a *app) cmdDocuments(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	repo := rest.NewDocumentRepo(a.api)

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		fs := flag.NewFlagSet("documents list", flag.ExitOnError)
		projectID := fs.Int64("project", 0, "project id")
		fs.Parse(args)

		docs, err := repo.List(ctx, *projectID)
		if err != nil {
			return err
		}
		return a.printDocuments(docs)

	case "upload":
		fs := flag.NewFlagSet("documents upload", flag.ExitOnError)
		projectID := fs.Int64("project", 0, "project id")
		file := fs.String("file", "", "path to the file to upload")
		name := fs.String("name", "", "document name (defaults to the file name)")
		fileType := fs.String("type", "", "file type (pdf, image, json, text, other)")
		fs.Parse(args)

		data, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		if *name == "" {
			*name = filepath.Base(*file)
		}
		if *fileType == "" {
			*fileType = guessFileType(*file)
		}
		if errs := validator.ValidateDocument(*name, *fileType, ""); errs.HasErrors() {
			return fmt.Errorf("invalid input: %v", errs)
		}

		doc, err := repo.Upload(ctx, *projectID, *name, *fileType, data)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %s (%d bytes) as document %s\n", doc.Name, doc.FileSize, doc.ID)
		return nil

	case "versions":
		fs := flag.NewFlagSet("documents versions", flag.ExitOnError)
		idArg := fs.String("id", "", "document id")
		fs.Parse(args)

		id, err := uuid.Parse(*idArg)
		if err != nil {
			return fmt.Errorf("bad document id: %w", err)
		}
		versions, err := repo.ListVersions(ctx, id)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tAPPROVED\tCREATED\tSUMMARY")
		for _, v := range versions {
			fmt.Fprintf(w, "%d\t%t\t%s\t%s\n",
				v.VersionNumber, v.IsApproved, v.CreatedAt.Format(time.DateTime), v.ChangeSummary)
		}
		return w.Flush()

	default:
		return fmt.Errorf("unknown documents subcommand %q (list, upload, versions)", sub)
	}
}

func (a *app) cmdTasks(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	repo := rest.NewTaskRepo(a.api)

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		fs := flag.NewFlagSet("tasks list", flag.ExitOnError)
		projectID := fs.Int64("project", 0, "project id")
		fs.Parse(args)

		tasks, err := repo.List(ctx, *projectID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tTITLE")
		for _, t := range tasks {
			fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.Status, t.Title)
		}
		return w.Flush()

	case "create":
		fs := flag.NewFlagSet("tasks create", flag.ExitOnError)
		projectID := fs.Int64("project", 0, "project id")
		title := fs.String("title", "", "task title")
		desc := fs.String("description", "", "task description")
		fs.Parse(args)

		if errs := validator.ValidateTask(*title, ""); errs.HasErrors() {
			return fmt.Errorf("invalid input: %v", errs)
		}
		created, err := repo.Create(ctx, &domain.Task{
			ProjectID:   *projectID,
			Title:       *title,
			Description: *desc,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created task #%d\n", created.ID)
		return nil

	case "status":
		fs := flag.NewFlagSet("tasks status", flag.ExitOnError)
		id := fs.Int64("id", 0, "task id")
		status := fs.String("set", "", "new status")
		fs.Parse(args)

		if errs := validator.ValidateTask("x", *status); errs.HasErrors() {
			return fmt.Errorf("invalid input: %v", errs)
		}
		updated, err := repo.UpdateStatus(ctx, *id, *status)
		if err != nil {
			return err
		}
		fmt.Printf("Task #%d is now %s\n", updated.ID, updated.Status)
		return nil

	default:
		return fmt.Errorf("unknown tasks subcommand %q (list, create, status)", sub)
	}
}

func (a *app) cmdView(args []string) error {
	if len(args) == 0 || args[0] == "get" {
		fmt.Println(a.store.ViewMode())
		return nil
	}
	if args[0] == "set" && len(args) > 1 {
		if err := a.store.SetViewMode(args[1]); err != nil {
			return err
		}
		fmt.Printf("View mode set to %s\n", args[1])
		return nil
	}
	return errors.New("usage: gtflow view [get | set grid|table]")
}

// printProjects honors the persisted view preference: table is one row
// per project, grid is a card-style block.
func (a *app) printProjects(projects []domain.Project) error {
	if a.store.ViewMode() == auth.ViewModeTable {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tACTIVE")
		for _, p := range projects {
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", p.ID, p.Name, p.TaskType, p.IsActive)
		}
		return w.Flush()
	}

	for _, p := range projects {
		fmt.Printf("#%d %s [%s]\n", p.ID, p.Name, p.TaskType)
		if p.Description != "" {
			fmt.Printf("    %s\n", p.Description)
		}
		if len(p.Labels) > 0 {
			fmt.Printf("    labels: %s\n", strings.Join(p.Labels, ", "))
		}
		fmt.Println()
	}
	return nil
}

func (a *app) printDocuments(docs []domain.Document) error {
	if a.store.ViewMode() == auth.ViewModeTable {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tSIZE")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", d.ID, d.Name, d.FileType, d.Status, d.FileSize)
		}
		return w.Flush()
	}

	for _, d := range docs {
		fmt.Printf("%s [%s, %s]\n", d.Name, d.FileType, d.Status)
		fmt.Printf("    %s\n", d.ID)
		if len(d.Metadata) > 0 {
			fmt.Printf("    %s\n", string(d.Metadata))
		}
		fmt.Println()
	}
	return nil
}

func guessFileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return domain.FileTypePDF
	case ".png", ".jpg", ".jpeg", ".gif", ".tiff", ".bmp":
		return domain.FileTypeImage
	case ".json":
		return domain.FileTypeJSON
	case ".txt", ".md", ".csv":
		return domain.FileTypeText
	default:
		return domain.FileTypeOther
	}
}
