package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"anonchat/backend/internal/metrics"
	"anonchat/backend/internal/moderation"
	"anonchat/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const envPrefix = "ANONCHAT"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Operator CLI for the anonymous chat service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (falls back to DATABASE_DSN).")
	_ = viper.BindPFlag("dsn", cmd.PersistentFlags().Lookup("dsn"))
	cmd.PersistentFlags().Int64("admin-id", 0, "Admin identity used for adjudications (falls back to ADMIN_ID).")
	_ = viper.BindPFlag("admin-id", cmd.PersistentFlags().Lookup("admin-id"))

	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newReportsCmd())
	cmd.AddCommand(newAdjudicateCmd())
	cmd.AddCommand(newBanCmd(true))
	cmd.AddCommand(newBanCmd(false))
	cmd.AddCommand(newTranscriptCmd())

	return cmd
}

func initConfig() {
	_ = godotenv.Load()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("dsn", "DATABASE_DSN")
	_ = viper.BindEnv("admin-id", "ADMIN_ID")
}

func openStorage() (*storage.Service, error) {
	dsn := viper.GetString("dsn")
	if dsn == "" {
		return nil, fmt.Errorf("no DSN given: set --dsn or DATABASE_DSN")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	// The CLI never touches wizard state, no Redis needed.
	return storage.NewService(db, nil), nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the global counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			stats, err := store.GlobalStats()
			if err != nil {
				return err
			}
			fmt.Printf("users:            %d\n", stats.Users)
			fmt.Printf("banned:           %d\n", stats.Banned)
			fmt.Printf("active sessions:  %d\n", stats.ActiveSessions)
			fmt.Printf("waiting:          %d\n", stats.Waiting)
			fmt.Printf("total sessions:   %d\n", stats.TotalSessions)
			fmt.Printf("reports:          %d\n", stats.Reports)
			fmt.Printf("pending reports:  %d\n", stats.PendingReports)
			return nil
		},
	}
}

func newReportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List pending abuse reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			reports, err := store.PendingReports()
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("no pending reports")
				return nil
			}
			for _, r := range reports {
				fmt.Printf("#%d  reporter=%d  reported=%d  session=%d  filed=%s\n",
					r.ID, r.ReporterID, r.ReportedID, r.SessionID,
					r.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newAdjudicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adjudicate <report-id> <ban|skip|close>",
		Short: "Apply a decision to a pending report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportID, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid report id %q", args[0])
			}
			store, err := openStorage()
			if err != nil {
				return err
			}
			adminID := viper.GetInt64("admin-id")
			mod := moderation.NewService(store, silentNotifier{}, metrics.Noop{}, zap.NewNop(), adminID)
			if err := mod.Adjudicate(context.Background(), adminID, uint(reportID), moderation.Action(args[1])); err != nil {
				return err
			}
			fmt.Printf("report #%d: %s\n", reportID, args[1])
			return nil
		},
	}
}

func newBanCmd(ban bool) *cobra.Command {
	use, short := "ban <user-id>", "Ban a user"
	if !ban {
		use, short = "unban <user-id>", "Lift a user's ban"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			store, err := openStorage()
			if err != nil {
				return err
			}
			if err := store.SetBanned(uid, ban); err != nil {
				return err
			}
			if ban {
				fmt.Printf("user %d banned\n", uid)
			} else {
				fmt.Printf("user %d unbanned\n", uid)
			}
			return nil
		},
	}
}

func newTranscriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <session-id>",
		Short: "Print the transcript of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid session id %q", args[0])
			}
			store, err := openStorage()
			if err != nil {
				return err
			}
			entries, err := store.Transcript(uint(sessionID))
			if err != nil {
				return err
			}
			fmt.Println(moderation.FormatTranscript(entries))
			return nil
		},
	}
}

// silentNotifier drops moderation notices. Ban notices reach the user
// the next time they talk to the bot anyway.
type silentNotifier struct{}

func (silentNotifier) Notify(ctx context.Context, uid int64, text string) error { return nil }
