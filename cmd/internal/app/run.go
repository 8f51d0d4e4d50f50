package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"shelf/cmd/identity"
)

// Run is the CLI entrypoint used by cmd/shelf.
// It returns an error instead of calling os.Exit to keep defers effective.
//
//	shelf [serve]
//	shelf create-user -email a@b.com -password secret [-first Ada] [-last Lovelace]
func Run(args []string, stdout io.Writer) error {
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	log := NewLogger(cfg.LogLevel, cfg.LogFormat, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "serve":
		a, err := New(ctx, cfg, log)
		if err != nil {
			return err
		}
		return a.Run(ctx)
	case "create-user":
		return createUser(ctx, cfg, log, args, stdout)
	default:
		return fmt.Errorf("unknown command %q (want serve or create-user)", cmd)
	}
}

func createUser(ctx context.Context, cfg Config, log Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var in identity.RegisterInput
	fs.StringVar(&in.Email, "email", "", "login email (required)")
	fs.StringVar(&in.Password, "password", "", "initial password (required)")
	fs.StringVar(&in.FirstName, "first", "", "first name")
	fs.StringVar(&in.LastName, "last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.Email == "" || in.Password == "" {
		fs.Usage()
		return errors.New("create-user: -email and -password are required")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("%w: create-user needs SHELF_DATABASE_URL", ErrConfig)
	}

	pool, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	users, err := newUsers(cfg, pool)
	if err != nil {
		return err
	}
	u, err := users.Register(ctx, in)
	switch {
	case err == nil:
	case identity.IsConflict(err):
		return fmt.Errorf("create-user: %s is already registered: %w", in.Email, err)
	case identity.IsInvalidInput(err):
		return fmt.Errorf("create-user: rejected input: %w", err)
	default:
		return fmt.Errorf("create-user: %w", err)
	}
	log.Info("identity.user.created", "user_id", u.ID.String())
	_, err = fmt.Fprintln(stdout, u.ID.String())
	return err
}
