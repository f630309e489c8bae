package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"booksum/config"
	"booksum/internal/domain/credential"
	"booksum/internal/domain/lifecycle"
	"booksum/internal/infra/auth"
	logs "booksum/internal/infra/log"
	"booksum/internal/infra/persistence"
	"booksum/internal/infra/ratelimit"
	"booksum/internal/usecase"
	"booksum/internal/usecase/impl"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/term"
)

// adduser registers an account from the terminal. The password is prompted
// twice without echo.
func main() {
	name := flag.String("name", "", "Display name")
	email := flag.String("email", "", "Email address")
	flag.Parse()

	if *name == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*name, *email); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(name, email string) error {
	_ = godotenv.Load()

	password, err := promptPassword()
	if err != nil {
		return err
	}

	var uc usecase.AuthUsecase

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			persistence.NewUserRepository,
			ratelimit.NewLedger,
			auth.NewBcryptHasher,
			impl.NewAuthService,
		),
		fx.Populate(&uc),
	)
	if err := app.Err(); err != nil {
		return errors.Wrap(err, "build application")
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return errors.Wrap(err, "start application")
	}
	defer func() { _ = app.Stop(context.Background()) }()

	result := uc.Register(ctx, usecase.RegisterInput{Name: name, Email: email, Password: password})
	if !result.Success() {
		return errors.New(result.Message)
	}

	fmt.Printf("%s (id %s)\n", result.Message, result.Data)

	return nil
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}

	read := func(prompt string) (string, error) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", errors.Wrap(err, "read password")
		}

		return string(b), nil
	}

	password, err := read("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}

	if violations := credential.ValidateConfirmation(password, confirm); len(violations) > 0 {
		return "", errors.New(strings.Join(violations, " "))
	}

	return password, nil
}
