package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/zeromicro/go-zero/core/logx"

	"findash/internal/cli"
	"findash/internal/config"
	"findash/internal/svc"
	"findash/pkg/journal"
	"findash/pkg/market"
	"findash/pkg/session"
)

const shutdownTimeout = 10 * time.Second

var configFile = flag.String("f", "etc/findash.yaml", "the config file")

func main() {
	flag.Parse()
	logx.Info("[main] starting quote monitor...")

	appCfg, err := config.Load(*configFile)
	if err != nil {
		logx.Errorf("[main] failed to load app config: %v, using defaults", err)
		appCfg = &config.Config{}
		appCfg.FillDefaults()
	}
	if appCfg.Market.Value == nil {
		appCfg.Market.Value = config.MustLoadMarket()
		appCfg.Market.File = "etc/market.yaml (default)"
	}
	cli.LogConfigSummary(appCfg)

	svcCtx := svc.MustNewServiceContext(*appCfg)
	defer svcCtx.Close()

	var jw *journal.Writer
	if dir := appCfg.Monitor.JournalDir; dir != "" {
		jw, err = journal.NewWriter(dir)
		logx.Must(err)
		logx.Infof("[main] journaling passes to %s", jw.Dir())
	}

	markets := appCfg.MonitorMarkets()
	logx.Infof("[main] monitored markets=%v interval=%s", markets, appCfg.Monitor.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler, err := gocron.NewScheduler()
	logx.Must(err)
	_, err = scheduler.NewJob(
		gocron.DurationJob(appCfg.Monitor.Interval),
		gocron.NewTask(func() {
			monitorMarkets(ctx, svcCtx.Session, jw, markets, appCfg.Monitor.Timeout)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	logx.Must(err)
	scheduler.Start()
	logx.Info("[main] monitor started, press Ctrl+C to stop")

	<-ctx.Done()
	logx.Info("[main] shutdown signal received, stopping tasks...")

	done := make(chan error, 1)
	go func() { done <- scheduler.Shutdown() }()
	select {
	case err := <-done:
		if err != nil {
			logx.Errorf("[main] scheduler shutdown: %v", err)
		} else {
			logx.Info("[main] all tasks stopped cleanly")
		}
	case <-time.After(shutdownTimeout):
		logx.Info("[main] shutdown timeout exceeded, forcing exit")
	}
}

// monitorMarkets activates each market in turn and logs its pass outcomes and quotes.
func monitorMarkets(parent context.Context, sess *session.Session, jw *journal.Writer, markets []market.Market, timeout time.Duration) {
	for _, m := range markets {
		if parent.Err() != nil {
			return
		}
		func() {
			ctx, cancel := context.WithTimeout(parent, timeout)
			defer cancel()

			start := time.Now()
			res, err := sess.Activate(ctx, m)
			if err != nil {
				logx.Errorf("[%s] [ERROR] %v", m, err)
				return
			}
			view := sess.View()
			logx.Infof("[%s] [%s] %s, calls=%d, took %dms", m, view.StatusLabel, view.MarketStatus, res.Calls, time.Since(start).Milliseconds())
			for _, o := range res.Outcomes {
				if o.Err != nil {
					logx.Infof("  - %s: %s provider=%s kind=%s err=%v", o.Key, o.Action, o.Provider, o.ErrorKind, o.Err)
					continue
				}
				logx.Infof("  - %s: %s provider=%s", o.Key, o.Action, o.Provider)
			}
			for _, iv := range view.Selected {
				q := iv.Quote
				logx.Infof("  - %s: last=%.4f change=%+.2f%% source=%s points=%d",
					iv.Instrument.DisplayName, q.LastPrice, q.ChangePercent, q.Source, q.Points)
			}
			if jw != nil {
				if path, err := jw.WritePass(journal.NewPassRecord(res, view)); err != nil {
					logx.Errorf("[%s] journal: %v", m, err)
				} else {
					logx.Debugf("[%s] journal written to %s", m, path)
				}
			}
		}()
	}
}
