package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/enerdesk/backoffice/internal/bootstrap"
	"github.com/enerdesk/backoffice/internal/data"
	"github.com/enerdesk/backoffice/internal/devseed"
	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/model"
	"github.com/enerdesk/backoffice/internal/service"
)

const commandTimeout = 2 * time.Minute

func runCreateUser(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	username := fs.String("username", "", "login name (required)")
	password := fs.String("password", "", "initial password (required)")
	role := fs.String("role", string(domainauth.RoleViewer), "role: viewer, analyst, trader, manager, or admin")
	department := fs.String("department", "", "department label")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("both -username and -password are required")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(cmdCtx.Logger, "db", db)

	users := service.NewUserService(service.UserServiceOptions{
		Users:  data.NewUserRepo(db),
		Logger: cmdCtx.Logger,
	})

	user, err := users.Create(ctx, &model.CreateUserRequest{
		Username:   *username,
		Password:   *password,
		Role:       *role,
		Department: *department,
	})
	if err != nil {
		return err
	}

	cmdCtx.Logger.InfoContext(ctx, "user created", "id", user.ID, "username", user.Username, "role", user.Role)
	return nil
}

func runResetPassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	username := fs.String("username", "", "login name (required)")
	password := fs.String("password", "", "new password (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("both -username and -password are required")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(cmdCtx.Logger, "db", db)

	repo := data.NewUserRepo(db)
	user, err := repo.GetByUsername(ctx, *username)
	if err != nil {
		return err
	}

	users := service.NewUserService(service.UserServiceOptions{
		Users:  repo,
		Logger: cmdCtx.Logger,
	})
	if resetErr := users.ResetPassword(ctx, user.ID, *password); resetErr != nil {
		return resetErr
	}

	cmdCtx.Logger.InfoContext(ctx, "password reset", "username", user.Username)
	return nil
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	role := fs.String("role", "", "filter by role")
	status := fs.String("status", "", "filter by status")
	limit := fs.Int("limit", 100, "maximum rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(cmdCtx.Logger, "db", db)

	users, total, err := data.NewUserRepo(db).List(ctx, data.UserListOptions{
		Role:   *role,
		Status: *status,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err = writef(tw, "USERNAME\tROLE\tSTATUS\tDEPARTMENT\tCREATED\n"); err != nil {
		return err
	}
	for _, u := range users {
		if err = writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			u.Username, u.Role, u.Status, u.Department, u.CreatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	if err = tw.Flush(); err != nil {
		return err
	}
	return writef(os.Stdout, "\n%d of %d users\n", len(users), total)
}

func runSeed(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	adminPassword := fs.String("admin-password", "", "password for the seeded admin account (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *adminPassword == "" {
		return fmt.Errorf("-admin-password is required")
	}
	if !cmdCtx.Config.IsDev {
		return fmt.Errorf("seed only runs in dev mode; set APP_ENV=development")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(cmdCtx.Logger, "db", db)

	if err = bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
		return err
	}

	return devseed.NewServices(db, cmdCtx.Logger).Seed(ctx, cmdCtx.Logger, *adminPassword)
}
