// Command createadmin creates an administrator account, or promotes an
// existing account, in the catalog database named by the server config.
//
//	createadmin -email admin@example.com
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/common"
	"github.com/basit/fileshare-catalog/config"
	"github.com/basit/fileshare-catalog/initializers"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/repositories"
)

func main() {
	fs := flag.NewFlagSet("createadmin", flag.ExitOnError)
	email := fs.String("email", "", "administrator email")
	keep := fs.Bool("keep-password", false, "promote an existing account without changing its password")
	_ = fs.Parse(os.Args[1:])

	if err := run(*email, *keep); err != nil {
		fmt.Fprintln(os.Stderr, "createadmin:", common.UserMessage(err, err.Error()))
		os.Exit(1)
	}
}

func run(email string, keepPassword bool) error {
	ctx := context.Background()

	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	in := bufio.NewReader(os.Stdin)
	if email == "" {
		if email, err = readLine(in, os.Stdout, "Email"); err != nil {
			return err
		}
	}

	var password string
	if !keepPassword {
		if password, err = readPassword(in, os.Stdout); err != nil {
			return err
		}
	}

	db, err := initializers.ConnectToDatabase(ctx, cfg)
	if err != nil {
		return err
	}

	svc := auth.NewService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		auth.NewHub(),
		logger,
	)

	user, created, err := svc.EnsureAdmin(ctx, email, password)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("created administrator %s (%s)\n", user.Email, user.ID)
	} else {
		fmt.Printf("promoted %s (%s) to administrator\n", user.Email, user.ID)
	}
	return nil
}
