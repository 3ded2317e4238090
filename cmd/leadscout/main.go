// Command leadscout discovers language-learning posts worth responding to.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadscout/internal/actions"
	"leadscout/internal/cmdlog"
	"leadscout/internal/config"
	"leadscout/internal/feed"
	"leadscout/internal/jobs"
	"leadscout/internal/language"
	"leadscout/internal/llm"
	"leadscout/internal/metrics"
	"leadscout/internal/model"
	"leadscout/internal/pipeline"
	"leadscout/internal/sink"
	"leadscout/internal/store/leaddb"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "init":
		err = cmdlog.Run("init", func() error { return cmdInit(os.Args[2:]) })
	case "run":
		err = cmdlog.Run("run", func() error { return cmdRun(os.Args[2:]) })
	case "loop":
		err = cmdlog.Run("loop", func() error { return cmdLoop(os.Args[2:]) })
	case "leads":
		err = cmdlog.Run("leads", func() error { return cmdLeads(os.Args[2:]) })
	case "languages":
		err = cmdlog.Run("languages", func() error { return cmdLanguages() })
	case "config":
		err = cmdlog.Run("config", func() error { return cmdConfig(os.Args[2:]) })
	case "help", "-h", "--help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printHelp()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`leadscout - find language learners who want conversation practice

Usage:
  leadscout init [-config path]          write a starter config file
  leadscout run [-config path]           one fetch-filter-score-persist pass
  leadscout loop [-config path]          run on an interval until interrupted
  leadscout leads list|next|sent <id>    work the outreach queue
  leadscout languages                    list supported languages and communities
  leadscout config [-config path]        print the effective configuration
`)
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "config file path")
	fs.Parse(args)
	if _, err := os.Stat(*path); err == nil {
		return fmt.Errorf("%s already exists", *path)
	}
	if err := config.Save(*path, config.Default()); err != nil {
		return err
	}
	fmt.Printf("wrote %s; set GEMINI_API_KEY and the REDDIT_* variables before running\n", *path)
	return nil
}

// buildDeps assembles the pipeline from configuration.
func buildDeps(cfg config.Config) (pipeline.Deps, *leaddb.Store, error) {
	var f feed.Feed
	if cfg.Reddit.UseMock {
		f = feed.NewMockFeed()
	} else {
		f = feed.NewRedditClient(feed.Credentials{
			ClientID:     cfg.Reddit.ClientID,
			ClientSecret: cfg.Reddit.ClientSecret,
			Username:     cfg.Reddit.Username,
			Password:     cfg.Reddit.Password,
		}, cfg.Reddit.UserAgent)
	}
	var client llm.Client
	if cfg.LLM.Provider != "none" {
		client = llm.NewGemini(cfg.LLM.APIKey)
	}
	db, err := leaddb.Open(cfg.DBPath)
	if err != nil {
		return pipeline.Deps{}, nil, err
	}
	return pipeline.Deps{
		Feed:          f,
		LLM:           client,
		Sink:          sink.New(cfg.DataDir),
		Store:         db,
		Subreddits:    cfg.Subreddits,
		FetchLimit:    cfg.Pipeline.FetchLimit,
		ScoringModel:  cfg.LLM.ScoringModel,
		ResponseModel: cfg.LLM.ResponseModel,
		Threshold:     cfg.Pipeline.SignalThreshold,
		BatchSize:     cfg.Pipeline.BatchSize,
		BatchPause:    cfg.Pipeline.BatchPause(),
		RequireWorthy: cfg.Pipeline.RequireWorthy,
	}, db, nil
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "config file path")
	fs.Parse(args)
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	metrics.StartServer(cfg.MetricsAddr)
	deps, db, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := pipeline.Run(ctx, deps)
	if err != nil {
		return err
	}
	printStats(stats)
	return nil
}

func cmdLoop(args []string) error {
	fs := flag.NewFlagSet("loop", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "config file path")
	every := fs.Duration("every", 0, "override run interval, e.g. 30m")
	fs.Parse(args)
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	metrics.StartServer(cfg.MetricsAddr)
	deps, db, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	interval := *every
	if interval == 0 {
		interval = time.Duration(cfg.LoopEveryMin) * time.Minute
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = jobs.Loop(ctx, interval, func(ctx context.Context) (model.RunStats, error) {
		return pipeline.Run(ctx, deps)
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

func cmdLeads(args []string) error {
	fs := flag.NewFlagSet("leads", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "config file path")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: leads list|next|sent <post-id> [comment|dm]")
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	db, err := leaddb.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	queue := actions.NewQueue(sink.New(cfg.DataDir), db)

	switch rest[0] {
	case "list":
		pending, err := queue.Pending()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("outreach queue is empty")
			return nil
		}
		for _, row := range pending {
			fmt.Printf("%s  [%s/%s]  r/%s  %s\n", row.PostID, row.SignalScore, row.SignalTier, row.Subreddit, row.Title)
		}
		return nil
	case "next":
		row, ok, err := queue.Next()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("outreach queue is empty")
			return nil
		}
		fmt.Printf("post:     %s\nurl:      %s\nwhy:      %s\n\n--- public comment ---\n%s\n\n--- dm ---\n%s\n\nmark done with: leadscout leads sent %s comment\n",
			row.Title, row.PostURL, row.WorthyReason, row.PublicDraft, row.DMDraft, row.PostID)
		return nil
	case "sent":
		if len(rest) < 2 {
			return fmt.Errorf("usage: leads sent <post-id> [comment|dm]")
		}
		channel := "comment"
		if len(rest) > 2 {
			channel = rest[2]
		}
		if err := queue.MarkSent(rest[1], channel); err != nil {
			return err
		}
		fmt.Printf("marked %s sent via %s\n", rest[1], channel)
		return nil
	default:
		return fmt.Errorf("unknown leads subcommand %q", rest[0])
	}
}

func cmdLanguages() error {
	for _, l := range language.Registry {
		fmt.Printf("%-4s %-12s %-18s %v\n", l.Code, l.Name, l.NativeName, l.Subreddits)
	}
	fmt.Printf("\ngeneral: %v\n", language.GeneralSubreddits)
	return nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "config file path")
	fs.Parse(args)
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	redacted := cfg
	if redacted.LLM.APIKey != "" {
		redacted.LLM.APIKey = "***"
	}
	if redacted.Reddit.ClientSecret != "" {
		redacted.Reddit.ClientSecret = "***"
	}
	if redacted.Reddit.Password != "" {
		redacted.Reddit.Password = "***"
	}
	fmt.Printf("subreddits: %d monitored\nthreshold:  %d\nbatch:      %d posts, %s pause\nscoring:    %s\nresponses:  %s\nsink:       %s\ndb:         %s\n",
		len(redacted.Subreddits), redacted.Pipeline.SignalThreshold,
		redacted.Pipeline.BatchSize, redacted.Pipeline.BatchPause(),
		redacted.LLM.ScoringModel, redacted.LLM.ResponseModel,
		redacted.DataDir, redacted.DBPath)
	return nil
}

func printStats(st model.RunStats) {
	fmt.Printf("fetched %d posts: %d leads (%d excluded, %d no trigger, %d deleted), %d high signal, %d saved, %d duplicates\n",
		st.PostsFetched, st.LeadsFound, st.Filter.Excluded, st.Filter.NoTrigger,
		st.Filter.DeletedAuthor, st.HighSignal, st.Saved, st.SkippedDuplicates)
}
