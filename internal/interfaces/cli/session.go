package cli

import (
	"context"
	"os"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/auth"
)

func runLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("login", e.app.Stderr)
	var input auth.LoginInput
	fs.StringVar(&input.Username, "u", "", "Username")
	fs.StringVar(&input.Username, "username", "", "Username")
	fs.StringVar(&input.Password, "p", "", "Password (prefer RETAIL_PASSWORD or the prompt)")
	fs.StringVar(&input.Password, "password", "", "Password")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	var err error
	if input.Username == "" {
		if input.Username, err = prompt(e.app.reader, e.app.Stderr, "Username"); err != nil {
			return err
		}
	}
	if input.Password == "" {
		input.Password = os.Getenv("RETAIL_PASSWORD")
	}
	if input.Password == "" {
		if input.Password, err = password(e.app.Stdin, e.app.reader, e.app.Stderr); err != nil {
			return err
		}
	}

	result, err := e.store.Users.Login(ctx, input)
	if err != nil {
		return err
	}
	e.store.ClearAll()

	name := input.Username
	if result.User != nil && result.User.Username != "" {
		name = result.User.Username
	}
	return e.out.Message("Logged in as %s", name)
}

func runLogout(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return usageErrorf("logout takes no arguments")
	}
	if err := e.store.Users.Logout(ctx); err != nil {
		return err
	}
	e.store.ClearAll()
	return e.out.Message("Logged out")
}

func runRegister(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("register", e.app.Stderr)
	var input auth.RegisterInput
	fs.StringVar(&input.Username, "u", "", "Username")
	fs.StringVar(&input.Username, "username", "", "Username")
	fs.StringVar(&input.Email, "email", "", "Email address")
	fs.StringVar(&input.Password, "p", "", "Password")
	fs.StringVar(&input.Password, "password", "", "Password")
	fs.StringVar(&input.Role, "role", "", "Role: admin, manager or cashier")
	fs.StringVar(&input.Branch, "branch", "", "Branch")
	fs.StringVar(&input.Phone, "phone", "", "Phone number")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if input.Username == "" || input.Email == "" {
		return usageErrorf("-u and -email are required")
	}

	if input.Password == "" {
		input.Password = os.Getenv("RETAIL_PASSWORD")
	}
	if input.Password == "" {
		pw, err := password(e.app.Stdin, e.app.reader, e.app.Stderr)
		if err != nil {
			return err
		}
		input.Password = pw
	}

	if err := e.store.Users.Register(ctx, input); err != nil {
		return err
	}
	return e.out.Message("Account %s registered. Run 'retailctl login' to sign in.", input.Username)
}

func runStatus(_ context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return usageErrorf("status takes no arguments")
	}
	return e.out.Print(e.store.Users.Status())
}
