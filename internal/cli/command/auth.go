package command

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// authCommands returns every identity operation as a command.
func authCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "signin",
			Usage:  "Sign in with email and password",
			Flags:  emailPasswordFlags(),
			Action: signIn,
		},
		{
			Name:   "signup",
			Usage:  "Create an account with email and password",
			Flags:  emailPasswordFlags(),
			Action: signUp,
		},
		{
			Name:   "signin-anonymous",
			Usage:  "Sign in as a new anonymous user",
			Action: signInAnonymously,
		},
		{
			Name:   "signout",
			Usage:  "Sign out",
			Action: signOut,
		},
		{
			Name:   "profile",
			Usage:  "Show the signed-in account",
			Action: profile,
		},
		{
			Name:  "update-profile",
			Usage: "Change or clear display name and photo URL",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "display-name", Usage: "New display name"},
				&cli.StringFlag{Name: "photo-url", Usage: "New photo URL"},
				&cli.StringSliceFlag{Name: "clear", Usage: "Attribute to clear: display_name or photo_url"},
			},
			Action: updateProfile,
		},
		{
			Name:   "update-email",
			Usage:  "Change the account email",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "email", Required: true}},
			Action: updateEmail,
		},
		{
			Name:   "update-password",
			Usage:  "Change the account password",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "password", Required: true}},
			Action: updatePassword,
		},
		{
			Name:   "verify-email",
			Usage:  "Send a verification mail to the account email",
			Action: verifyEmail,
		},
		{
			Name:   "reset-password",
			Usage:  "Send a password reset mail",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "email", Required: true}},
			Action: resetPassword,
		},
		{
			Name:   "verify-reset-code",
			Usage:  "Show the email a reset code belongs to",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "code", Required: true}},
			Action: verifyResetCode,
		},
		{
			Name:  "confirm-reset",
			Usage: "Set a new password with a reset code",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "code", Required: true},
				&cli.StringFlag{Name: "password", Required: true},
			},
			Action: confirmReset,
		},
		{
			Name:   "providers",
			Usage:  "List the sign-in providers linked to an email",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "email", Required: true}},
			Action: providers,
		},
		{
			Name:   "relogin",
			Usage:  "Re-authenticate the signed-in user",
			Flags:  credentialFlags(),
			Action: relogin,
		},
		{
			Name:  "delete",
			Usage: "Delete the signed-in account permanently",
			Flags: append(credentialFlags(), &cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Skip the confirmation guard",
			}),
			Action: deleteAccount,
		},
	}
}

func emailPasswordFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
		&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "provider", Value: domain.ProviderPassword, Usage: "Credential provider, e.g. password or google.com"},
		&cli.StringFlag{Name: "email", Usage: "Email for password credentials"},
		&cli.StringFlag{Name: "password", Usage: "Password for password credentials"},
		&cli.StringFlag{Name: "id-token", Usage: "Provider ID token for federated credentials"},
		&cli.StringFlag{Name: "access-token", Usage: "Provider access token for federated credentials"},
	}
}

// credential builds the credential described by the flags.
func credential(c *cli.Context) (domain.Credential, error) {
	provider := c.String("provider")
	if provider == domain.ProviderPassword {
		if c.String("email") == "" || c.String("password") == "" {
			return domain.Credential{}, domain.ErrInvalidArgument.WithDetails("--email and --password are required for password credentials")
		}
		return domain.PasswordCredential(c.String("email"), c.String("password")), nil
	}

	secret := map[string]string{}
	if v := c.String("id-token"); v != "" {
		secret["id_token"] = v
	}
	if v := c.String("access-token"); v != "" {
		secret["access_token"] = v
	}
	if len(secret) == 0 {
		return domain.Credential{}, domain.ErrInvalidArgument.WithDetails("--id-token or --access-token is required for " + provider)
	}
	return domain.Credential{Provider: provider, Secret: secret}, nil
}

// authorized returns the environment and a context carrying the caller's
// authorization.
func authorized(c *cli.Context) (*Env, context.Context, error) {
	env, err := envFrom(c)
	if err != nil {
		return nil, nil, err
	}
	ctx, err := env.Authorize(c.Context, c.String("refresh-token"))
	if err != nil {
		return nil, nil, err
	}
	return env, ctx, nil
}

func signIn(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	s, err := env.Dispatcher.SignIn(c.Context, c.String("email"), c.String("password")).Await(c.Context)
	if err != nil {
		return err
	}
	return render(c, newSessionView(s, true))
}

func signUp(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	s, err := env.Dispatcher.SignUp(c.Context, c.String("email"), c.String("password")).Await(c.Context)
	if err != nil {
		return err
	}
	return render(c, newSessionView(s, true))
}

func signInAnonymously(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	s, err := env.Dispatcher.SignInAnonymously(c.Context).Await(c.Context)
	if err != nil {
		return err
	}
	return render(c, newSessionView(s, true))
}

func signOut(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	if _, err := env.Dispatcher.SignOut(c.Context).Await(c.Context); err != nil {
		return err
	}
	message(c, "signed out")
	return nil
}

func profile(c *cli.Context) error {
	env, ctx, err := authorized(c)
	if err != nil {
		return err
	}
	s, err := env.Dispatcher.CurrentSession(ctx).Await(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNoSession.WithDetails("sign in or pass --refresh-token")
	}
	return render(c, newSessionView(s, false))
}

func updateProfile(c *cli.Context) error {
	update := domain.ProfileUpdate{
		DisplayName: c.String("display-name"),
		PhotoURL:    c.String("photo-url"),
	}
	for _, name := range c.StringSlice("clear") {
		attr, err := domain.ParseProfileAttribute(name)
		if err != nil {
			return err
		}
		update.Delete = append(update.Delete, attr)
	}
	if update.DisplayName == "" && update.PhotoURL == "" && len(update.Delete) == 0 {
		return domain.ErrInvalidArgument.WithDetails("nothing to update")
	}

	env, ctx, err := authorized(c)
	if err != nil {
		return err
	}
	s, err := env.Dispatcher.UpdateProfile(ctx, update).Await(ctx)
	if err != nil {
		return err
	}
	return render(c, newSessionView(s, false))
}

func updateEmail(c *cli.Context) error {
	env, ctx, err := authorized(c)
	if err != nil {
		return err
	}
	s, err := env.Dispatcher.UpdateEmail(ctx, c.String("email")).Await(ctx)
	if err != nil {
		return err
	}
	return render(c, newSessionView(s, false))
}

func updatePassword(c *cli.Context) error {
	env, ctx, err := authorized(c)
	if err != nil {
		return err
	}
	s, err := env.Dispatcher.UpdatePassword(ctx, c.String("password")).Await(ctx)
	if err != nil {
		return err
	}
	return render(c, newSessionView(s, false))
}

func verifyEmail(c *cli.Context) error {
	env, ctx, err := authorized(c)
	if err != nil {
		return err
	}
	if _, err := env.Dispatcher.SendEmailVerification(ctx).Await(ctx); err != nil {
		return err
	}
	message(c, "verification mail sent")
	return nil
}

func resetPassword(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	email := c.String("email")
	if _, err := env.Dispatcher.SendPasswordResetEmail(c.Context, email).Await(c.Context); err != nil {
		return err
	}
	message(c, "password reset mail sent to %s", email)
	return nil
}

func verifyResetCode(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	email, err := env.Dispatcher.VerifyPasswordResetCode(c.Context, c.String("code")).Await(c.Context)
	if err != nil {
		return err
	}
	return render(c, emailView{Email: email})
}

func confirmReset(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	if _, err := env.Dispatcher.ConfirmPasswordReset(c.Context, c.String("code"), c.String("password")).Await(c.Context); err != nil {
		return err
	}
	message(c, "password changed")
	return nil
}

func providers(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	email := c.String("email")
	ids, err := env.Dispatcher.FetchProvidersForEmail(c.Context, email).Await(c.Context)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}
	return render(c, providersView{Email: email, Providers: ids})
}

func relogin(c *cli.Context) error {
	cred, err := credential(c)
	if err != nil {
		return err
	}
	env, ctx, err := authorized(c)
	if err != nil {
		return err
	}
	s, err := env.Dispatcher.Relogin(ctx, cred).Await(ctx)
	if err != nil {
		return err
	}
	return render(c, newSessionView(s, false))
}

var errDeleteNeedsForce = errors.New("refusing to delete the account without --force")

func deleteAccount(c *cli.Context) error {
	if !c.Bool("force") {
		return errDeleteNeedsForce
	}
	cred, err := credential(c)
	if err != nil && c.IsSet("provider") {
		return err
	}

	env, ctx, err := authorized(c)
	if err != nil {
		return err
	}
	if _, err := env.Dispatcher.DeletePermanently(ctx, cred).Await(ctx); err != nil {
		return err
	}
	message(c, "account deleted")
	return nil
}
