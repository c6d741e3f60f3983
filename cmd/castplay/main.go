// castplay is a minimal command-line player over the castkit SDK. It
// wires the full stack (config, store, API client, queue, offsets,
// engines, remote control) and plays the posts given on the command
// line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/treble-fm/castkit/api"
	"github.com/treble-fm/castkit/config"
	"github.com/treble-fm/castkit/connectivity"
	"github.com/treble-fm/castkit/files"
	"github.com/treble-fm/castkit/log"
	"github.com/treble-fm/castkit/nowplaying"
	"github.com/treble-fm/castkit/offsets"
	"github.com/treble-fm/castkit/playback"
	"github.com/treble-fm/castkit/queue"
	"github.com/treble-fm/castkit/remote"
	"github.com/treble-fm/castkit/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "castplay:", err)
		os.Exit(1)
	}
}

func run() error {
	speed := flag.Float64("speed", 1.0, "playback speed")
	sleep := flag.Duration("sleep", 0, "sleep timer (e.g. 30m)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: castplay [flags] <post-id> [post-id...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := log.Setup(log.Options{Dir: cfg.Logs.Dir, JSON: cfg.Logs.JSON, Level: cfg.Logs.Level}); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	st, err := store.Open()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	client := api.New(cfg.APIBaseURL)
	probe := connectivity.NewChecker(cfg.Connectivity.Endpoint, time.Duration(cfg.Connectivity.TimeoutMs)*time.Millisecond)
	resolver := files.NewDir(cfg.DownloadsDir)

	q := queue.New(st)
	if saved, err := st.FetchQueue(); err == nil {
		q.Restore(saved)
	} else {
		log.Warnf("castplay: restore queue: %v", err)
	}

	tracker := offsets.New(st, client, probe, offsets.Options{
		ReconcileThreshold: time.Duration(cfg.Playback.ReconcileSeconds) * time.Second,
		CompletionWindow:   time.Duration(cfg.Playback.CompletionWindowSeconds) * time.Second,
	})

	center := nowplaying.NewCenter()
	artwork := nowplaying.NewArtwork()

	orc := playback.New(playback.Deps{
		Client:     client,
		Cache:      st,
		Queue:      q,
		Offsets:    tracker,
		Probe:      probe,
		Files:      resolver,
		NowPlaying: center,
	}, playback.Options{
		ForwardLength:          time.Duration(cfg.Playback.ForwardSeconds) * time.Second,
		BackwardLength:         time.Duration(cfg.Playback.BackwardSeconds) * time.Second,
		PreviousTrackThreshold: time.Duration(cfg.Playback.PreviousTrackSeconds) * time.Second,
		ProgressInterval:       cfg.Playback.ProgressInterval(),
	})
	defer orc.Shutdown()

	bridge, err := remote.New(orc, center, artwork)
	if err != nil {
		log.Warnf("castplay: remote control unavailable: %v", err)
	} else {
		orc.SetTransport(bridge)
		defer bridge.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ids := flag.Args()
	for _, id := range ids[1:] {
		if err := orc.AddToPlaybackQueue(api.Post{ID: id}, true, false); err != nil {
			log.Warnf("castplay: queue %s: %v", id, err)
		}
	}

	post, err := client.GetPost(ctx, ids[0])
	if err != nil {
		return fmt.Errorf("fetch post %s: %w", ids[0], err)
	}
	fmt.Printf("%s by %s", post.Title, post.OwnerName)
	if !post.PublishedAt.IsZero() {
		fmt.Printf(", published %s", humanize.Time(post.PublishedAt))
	}
	fmt.Println()

	sub := orc.Subscribe()

	if *speed != 1.0 {
		orc.SetPlaybackSpeed(*speed)
	}
	if *sleep > 0 {
		orc.SetSleepTimer(*sleep)
	}

	if err := orc.PlayRequest(ctx, *post, nil); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case init := <-sub.Initialized:
			fmt.Printf("\nplaying %s\n", init.Item.Title)
		case pos := <-sub.PositionChanged:
			fmt.Printf("\r%s / %s  ", clock(pos.Position), clock(pos.Duration))
		case state := <-sub.StateUpdated:
			log.Debugf("castplay: state %s [%s]", state.State, state.Flags)
		case <-sub.Finished:
			if !orc.Queue().HasAny() && orc.Status().State == playback.Ended {
				fmt.Println("\ndone")
				return nil
			}
		case failed := <-sub.Failed:
			return failed.Err
		case <-sub.Closed:
			return nil
		case <-sigs:
			fmt.Println()
			orc.Close()
		case <-sub.Done:
			return nil
		}
	}
}

func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
