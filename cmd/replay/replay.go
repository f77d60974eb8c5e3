package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/reps.report/internal/bar"
	"github.com/banshee-data/reps.report/internal/config"
	"github.com/banshee-data/reps.report/internal/metrics"
	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/recording"
	"github.com/banshee-data/reps.report/internal/registry"
	"github.com/banshee-data/reps.report/internal/report"
	"github.com/banshee-data/reps.report/internal/session"
	"github.com/banshee-data/reps.report/internal/timeutil"
)

type options struct {
	Input       string
	DBPath      string
	RecordingID string
	Import      bool
	List        bool
	Exercise    string
	HTMLPath    string
	PNGPath     string
	Realtime    bool
	Speed       float64
	MetricsAddr string
	ConfigPath  string

	// Clock paces -realtime playback; nil uses the wall clock.
	Clock timeutil.Clock
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

func newSession(cfg *config.TuningConfig, m *metrics.Manager) *session.Session {
	entries := registry.Entries(registry.Options{
		JackCalibration:   cfg.GetJumpingJackCalibration(),
		PushUpCalibration: cfg.GetCalibrationDuration(),
	})
	det := bar.NewDetector(bar.Config{
		MaxAge:    cfg.GetBarMaxAge(),
		Smoothing: cfg.GetBarSmoothing(),
		Scoring: bar.ScoringConfig{
			MaxRowDeltaPx:     cfg.GetBarMaxRowDeltaPx(),
			MinLengthFraction: cfg.GetBarMinLengthFraction(),
		},
	}, nil)
	return session.New(entries, det, session.Config{
		WarningLimit:  cfg.GetWarningDisplayLimit(),
		HistoryLength: cfg.GetHistoryLength(),
	}, m)
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := loadTuning(opts.ConfigPath)
	if err != nil {
		return err
	}

	var store *recording.Store
	if opts.DBPath != "" {
		store, err = recording.Open(opts.DBPath, nil)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	if opts.List {
		if store == nil {
			return errors.New("-list requires -db")
		}
		return listRecordings(ctx, store, out)
	}

	samples, err := loadSamples(ctx, opts, store, cfg.GetVisibilityThreshold(), out)
	if err != nil {
		return err
	}

	var m *metrics.Manager
	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		m = metrics.NewManager("reps", "replay", reg)
		srv := &http.Server{
			Addr:              opts.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				monitoring.Logf("metrics server: %v", err)
			}
		}()
		defer srv.Close()
	}

	sess := newSession(cfg, m)
	if !sess.SelectName(opts.Exercise) {
		return fmt.Errorf("unknown exercise %q; choose one of: %s",
			opts.Exercise, strings.Join(registry.Names(sess.Entries()), ", "))
	}

	var pacer *timeutil.Pacer
	if opts.Realtime {
		pacer = timeutil.NewPacer(opts.Clock, opts.Speed)
	}

	tr, err := replay(ctx, sess, samples, pacer, out)
	if err != nil {
		return err
	}

	sum := report.Summarize(tr)
	fmt.Fprintf(out, "%s: %d reps (%d rejected) over %.1fs, %d frames, %.0f%% with a pose, mean frame interval %.1fms\n",
		tr.Exercise, sum.Reps, sum.Rejected, sum.Duration, sum.Frames, sum.ValidRatio*100, sum.MeanInterval*1000)

	if opts.HTMLPath != "" {
		if err := writeHTML(opts.HTMLPath, tr); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := report.SavePNG(opts.PNGPath, tr); err != nil {
			return err
		}
	}
	return nil
}

func loadSamples(ctx context.Context, opts options, store *recording.Store, minVis float64, out io.Writer) ([]recording.Sample, error) {
	switch {
	case opts.Input != "":
		f, err := os.Open(opts.Input)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		samples, err := recording.ReadAll(f, minVis)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", opts.Input, err)
		}
		if opts.Import {
			if store == nil {
				return nil, errors.New("-import requires -db")
			}
			name := strings.TrimSuffix(filepath.Base(opts.Input), filepath.Ext(opts.Input))
			rec, err := store.Create(ctx, name, opts.Exercise)
			if err != nil {
				return nil, err
			}
			if err := store.Append(ctx, rec.ID, samples); err != nil {
				return nil, err
			}
			fmt.Fprintf(out, "imported %d frames as recording %s\n", len(samples), rec.ID)
		}
		return samples, nil

	case opts.RecordingID != "":
		if store == nil {
			return nil, errors.New("-recording requires -db")
		}
		id, err := uuid.Parse(opts.RecordingID)
		if err != nil {
			return nil, fmt.Errorf("invalid recording id: %w", err)
		}
		return store.Samples(ctx, id, minVis)

	default:
		return nil, errors.New("one of -input or -recording is required")
	}
}

// replay runs every sample through the session, printing a line whenever the
// rep count or the leading warning changes.
func replay(ctx context.Context, sess *session.Session, samples []recording.Sample, pacer *timeutil.Pacer, out io.Writer) (report.Trace, error) {
	var tr report.Trace
	lastReps, lastWarning := 0, ""
	for i := range samples {
		s := &samples[i]
		if pacer != nil {
			if err := pacer.Wait(ctx, s.Frame.Timestamp); err != nil {
				return tr, err
			}
		} else if err := ctx.Err(); err != nil {
			return tr, err
		}

		snap := sess.ProcessRow(&s.Frame, s.BarY, s.BarFound)
		tr.Add(snap, s.Frame.Valid)

		warning := ""
		if len(snap.Warnings) > 0 {
			warning = snap.Warnings[0]
		}
		if snap.RepCount != lastReps || warning != lastWarning {
			fmt.Fprintf(out, "t=%7.2fs reps=%-3d phase=%-11s %s\n", snap.Timestamp, snap.RepCount, snap.Phase, strings.Join(snap.Warnings, "; "))
			lastReps, lastWarning = snap.RepCount, warning
		}
	}
	return tr, nil
}

func writeHTML(path string, tr report.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteHTML(f, tr); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func listRecordings(ctx context.Context, store *recording.Store, out io.Writer) error {
	recs, err := store.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEXERCISE\tFRAMES\tCREATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, r.Exercise, r.Frames, r.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
