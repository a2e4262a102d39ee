package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/kitchen-roster/internal/generate"
	"github.com/nhle/kitchen-roster/internal/store"
)

var keywordsFlag []string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create the day's tasks from templates",
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st store.Store, args []string) error {
		day, err := resolveDay()
		if err != nil {
			return err
		}
		res, err := generate.New(st).Generate(ctx, day, keywordsFlag)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: created %d, skipped %d\n", day, len(res.Created), res.Skipped)
		return err
	}),
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate each day's tasks on the configured cron schedule",
	RunE:  runSchedule,
}

func init() {
	for _, c := range []*cobra.Command{generateCmd, scheduleCmd} {
		c.Flags().StringSliceVar(&keywordsFlag, "keywords", nil, "only templates whose title contains one of these")
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := generate.NewScheduler(generate.New(st), cfg.Schedule.GenerateCron, keywordsFlag)
	if _, err := sched.RunOnce(ctx); err != nil {
		log.Printf("[generate] catch-up run: %v", err)
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	log.Printf("[generate] scheduled %q; ctrl+c to stop", cfg.Schedule.GenerateCron)

	<-ctx.Done()
	sched.Stop()
	return nil
}
