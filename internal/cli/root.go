// Package cli implements the mailcheck command line.
package cli

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/optimode/mailcheck"
)

var version = "dev"

// verifierService is the part of *mailcheck.Verifier the commands use.
type verifierService interface {
	Verify(ctx context.Context, email string, opts ...mailcheck.Options) (mailcheck.Result, error)
	VerifyMany(ctx context.Context, emails []string, concurrency int, opts ...mailcheck.Options) ([]mailcheck.Result, error)
}

var (
	enableSMTP      bool
	dnsTimeout      time.Duration
	smtpTimeout     time.Duration
	skipDisposable  bool
	skipRole        bool
	skipTypo        bool
	allowImplicitMX bool
	heloDomain      string
	mailFrom        string
	verbose         bool
)

// newVerifier is replaced in tests.
var newVerifier = func() verifierService {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return mailcheck.New().
		WithLogger(logger).
		WithProbe(mailcheck.ProbeOptions{HeloDomain: heloDomain, MailFrom: mailFrom})
}

var rootCmd = &cobra.Command{
	Use:   "mailcheck",
	Short: "Check whether email addresses are safe to send to",
	Long: `Runs syntax, DNS and attribute checks on email addresses and,
optionally, a catch-all probe against the domain's mail exchanger.
No mail is ever sent. Results are printed as JSON.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&enableSMTP, "smtp", false, "run the catch-all probe")
	flags.DurationVar(&dnsTimeout, "dns-timeout", 5*time.Second, "timeout per DNS lookup stage")
	flags.DurationVar(&smtpTimeout, "smtp-timeout", 10*time.Second, "upper bound for the catch-all probe")
	flags.BoolVar(&skipDisposable, "skip-disposable", false, "skip the disposable domain check")
	flags.BoolVar(&skipRole, "skip-role", false, "skip the role account check")
	flags.BoolVar(&skipTypo, "skip-typo", false, "skip the domain typo check")
	flags.BoolVar(&allowImplicitMX, "allow-implicit-mx", false, "accept domains with only A/AAAA records")
	flags.StringVar(&heloDomain, "helo", "localhost", "EHLO domain used by the catch-all probe")
	flags.StringVar(&mailFrom, "mail-from", "verify@localhost", "MAIL FROM address used by the catch-all probe")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
}

func options() mailcheck.Options {
	return mailcheck.Options{
		EnableSMTP:      enableSMTP,
		DNSTimeout:      dnsTimeout,
		SMTPTimeout:     smtpTimeout,
		SkipDisposable:  skipDisposable,
		SkipRole:        skipRole,
		SkipTypo:        skipTypo,
		AllowImplicitMX: allowImplicitMX,
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
