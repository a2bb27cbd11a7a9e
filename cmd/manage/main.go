package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/libraryhub/libraryhub/pkg/config"
	"github.com/libraryhub/libraryhub/pkg/database"
	"github.com/libraryhub/libraryhub/pkg/migrations"
	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/libraryhub/libraryhub/pkg/users"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

const minPasswordLength = 8

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	userService := users.NewService(db)

	app := &cli.App{
		Name:        "manage",
		Usage:       "CLI to manage library accounts",
		Description: "CLI to manage library accounts",
		Before: func(c *cli.Context) error {
			_, err := migrations.BringUpToDate(c.Context, db)
			return err
		},
		Commands: []*cli.Command{
			{
				Name:  "createuser",
				Usage: "create a user, prompting for the password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
					&cli.BoolFlag{Name: "staff", Usage: "give the user staff rights"},
				},
				Action: func(c *cli.Context) error {
					password, err := readPassword()
					if err != nil {
						return err
					}

					user, err := userService.Create(c.Context, users.CreateUserOptions{
						Email:     c.String("email"),
						Password:  password,
						FirstName: c.String("first-name"),
						LastName:  c.String("last-name"),
						IsStaff:   c.Bool("staff"),
					})
					if err != nil {
						return err
					}

					fmt.Printf("Created %s (id %d)\n", describe(user), user.ID)
					return nil
				},
			},
			{
				Name:  "setpassword",
				Usage: "change a user's password, prompting for the new one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: func(c *cli.Context) error {
					user, err := userService.RetrieveByEmail(c.Context, c.String("email"))
					if err != nil {
						return err
					}

					password, err := readPassword()
					if err != nil {
						return err
					}

					if err := userService.ResetPassword(c.Context, user.ID, password); err != nil {
						return err
					}

					fmt.Printf("Changed the password of %s\n", describe(user))
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

// readPassword prompts twice on a terminal. Otherwise it reads a single line
// from stdin so the command can be scripted.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", errors.Wrap(err, "failed to read password from stdin")
		}
		return validatePassword(strings.TrimRight(line, "\r\n"))
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", errors.WithStack(err)
	}
	fmt.Print("Password (again): ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", errors.WithStack(err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords don't match")
	}
	return validatePassword(string(first))
}

func validatePassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", errors.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return password, nil
}

func describe(user *models.User) string {
	if user.IsStaff {
		return "staff user " + user.Email
	}
	return "user " + user.Email
}
