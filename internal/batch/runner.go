/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/shopmedia/internal/csvtable"
	"github.com/friendsincode/shopmedia/internal/imagepipe"
	"github.com/friendsincode/shopmedia/internal/media"
	"github.com/friendsincode/shopmedia/internal/metawrite"
	"github.com/friendsincode/shopmedia/internal/naming"
	"github.com/friendsincode/shopmedia/internal/statusboard"
	"github.com/friendsincode/shopmedia/internal/transcode"
)

// ErrConfig marks setup failures that prevent the run from starting.
var ErrConfig = errors.New("batch configuration error")

// State is the lifecycle phase of a run.
type State string

const (
	StateIdle        State = "idle"
	StateDiscovering State = "discovering"
	StateProcessing  State = "processing"
	StateCancelling  State = "cancelling"
	StateDone        State = "done"
)

// Transcoder is the video encode stage.
type Transcoder interface {
	Run(ctx context.Context, in, out string, spec transcode.Spec) error
}

// ImageConverter is the HEIC→JPEG stage.
type ImageConverter interface {
	ConvertFile(ctx context.Context, src, dst string, opts imagepipe.Options) error
}

// MetadataWriter is the clear-and-rewrite tagging stage.
type MetadataWriter interface {
	Write(ctx context.Context, path string, kind media.Kind, spec metawrite.Spec) error
	Verify(ctx context.Context, path, container string, expected metawrite.Spec) (metawrite.VerifyResult, error)
}

// Config is the caller-supplied setup of one run. Only InputRoot and
// OutputRoot are mandatory.
type Config struct {
	InputRoot  string
	OutputRoot string
	CSVPath    string

	DefaultTitle string
	DefaultTags  string // comma-separated override, wins over path inference

	Spec      transcode.Spec
	ImageOpts imagepipe.Options

	ProcessImages bool
	DryRun        bool
	// MatchedOnly skips items with no CSV row instead of falling back
	// to defaults.
	MatchedOnly bool
}

// Runner walks an input tree and pushes every media file through the
// encode/convert and metadata stages, strictly one item at a time.
type Runner struct {
	cfg        Config
	transcoder Transcoder
	images     ImageConverter
	meta       MetadataWriter
	board      *statusboard.Board
	logger     zerolog.Logger

	state State
	// seq tracks per-(dir,base) sequential image numbering within one
	// run so a re-run probes the same candidates again.
	seq map[string]int
}

// NewRunner wires a runner from its stages. board may be nil.
func NewRunner(cfg Config, tc Transcoder, ic ImageConverter, mw MetadataWriter, board *statusboard.Board, logger zerolog.Logger) *Runner {
	return &Runner{
		cfg:        cfg,
		transcoder: tc,
		images:     ic,
		meta:       mw,
		board:      board,
		logger:     logger,
		state:      StateIdle,
		seq:        map[string]int{},
	}
}

// State returns the current lifecycle phase.
func (r *Runner) State() State { return r.state }

// Run executes the full pass. The summary callback fires exactly once
// for every started run; setup failures return before the run starts
// and are the only errors escalated to the caller.
func (r *Runner) Run(ctx context.Context, onDone func(Summary)) (*Summary, error) {
	if r.cfg.InputRoot == "" || r.cfg.OutputRoot == "" {
		return nil, fmt.Errorf("%w: input and output roots are required", ErrConfig)
	}
	if info, err := os.Stat(r.cfg.InputRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: input root %q is not a readable directory", ErrConfig, r.cfg.InputRoot)
	}

	summary := newSummary(uuid.NewString())
	defer func() {
		r.state = StateDone
		r.logSummary(summary)
		if onDone != nil {
			onDone(*summary)
		}
	}()

	r.state = StateDiscovering
	videos, images, err := r.discover()
	if err != nil {
		return summary, fmt.Errorf("%w: discovery: %v", ErrConfig, err)
	}
	if !r.cfg.ProcessImages {
		images = nil
	}
	if len(videos) == 0 && len(images) == 0 {
		summary.NothingToDo = true
		r.logger.Info().Msg("no videos or images under the input root, nothing to do")
		return summary, nil
	}

	table := r.loadTable()

	r.logger.Info().
		Str("run", summary.RunID).
		Int("videos", len(videos)).
		Int("images", len(images)).
		Msg("processing")

	r.state = StateProcessing
	for _, it := range append(videos, images...) {
		select {
		case <-ctx.Done():
			r.state = StateCancelling
			summary.Cancelled = true
			r.logger.Warn().Str("run", summary.RunID).Msg("run cancelled, stopping at item boundary")
			return summary, nil
		default:
		}
		r.processItem(ctx, it, table, summary)
	}

	return summary, nil
}

// discover enumerates and classifies every file under the input root in
// walk order.
func (r *Runner) discover() (videos, images []media.Item, err error) {
	err = filepath.WalkDir(r.cfg.InputRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			r.logger.Warn().Err(walkErr).Str("path", path).Msg("discovery: skipping unreadable entry")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(r.cfg.InputRoot, path)
		if relErr != nil {
			return relErr
		}
		item := media.Item{AbsPath: path, RelPath: rel, Kind: media.Classify(d.Name())}
		switch item.Kind {
		case media.KindVideo:
			videos = append(videos, item)
		case media.KindImage:
			images = append(images, item)
		}
		return nil
	})
	return videos, images, err
}

// loadTable reads the CSV mapping; any failure degrades to an empty
// table rather than aborting the run.
func (r *Runner) loadTable() csvtable.Table {
	if r.cfg.CSVPath == "" {
		return csvtable.Table{}
	}
	table, err := csvtable.Load(r.cfg.CSVPath)
	if err != nil {
		r.logger.Warn().Err(err).Str("csv", r.cfg.CSVPath).Msg("CSV unavailable, proceeding without lookup")
		return csvtable.Table{}
	}
	r.logger.Info().Int("rows", len(table)).Msg("CSV lookup table loaded")
	return table
}

// decision is the fully resolved plan for one item.
type decision struct {
	outPath string
	title   string
	spec    metawrite.Spec
	matched bool
}

// resolve joins an item against the table and applies the naming,
// routing and tag rules.
func (r *Runner) resolve(it media.Item, table csvtable.Table) decision {
	key := it.FolderKey()
	rec, matched := table[key]
	if !matched && it.Kind == media.KindImage {
		// Images fall back to their own stem.
		rec, matched = table[csvtable.NormalizeKey(it.Stem())]
	}

	title := rec.Title
	if title == "" {
		title = r.cfg.DefaultTitle
	}
	if title == "" {
		title = it.Stem()
	}

	var tags []string
	if matched {
		tags = rec.SplitTags()
	}
	if len(tags) == 0 && r.cfg.DefaultTags != "" {
		for _, t := range strings.Split(r.cfg.DefaultTags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	if len(tags) == 0 {
		tags = it.PathTags()
	}
	if len(tags) == 0 && key != "" {
		tags = []string{key}
	}

	outDir := filepath.Join(r.cfg.OutputRoot, it.RelDir())
	if rec.TargetID != "" {
		outDir = filepath.Join(r.cfg.OutputRoot, rec.TargetID)
	}

	var outPath string
	if it.Kind == media.KindVideo {
		base := naming.SafeName(title, "video")
		ext := strings.ToLower(filepath.Ext(it.AbsPath))
		if r.cfg.Spec.Container != "" {
			ext = "." + strings.ToLower(r.cfg.Spec.Container)
		}
		outPath = filepath.Join(outDir, base+ext)
	} else {
		base := naming.SafeName(title, "image")
		outPath = r.nextImagePath(outDir, base)
	}

	return decision{
		outPath: outPath,
		title:   title,
		matched: matched,
		spec:    metawrite.Spec{Title: title, Tags: tags, Rating: metawrite.ParseRating("")},
	}
}

// nextImagePath assigns sequential file names per (dir, base) pair. The
// counter lives for one run, so a second no-overwrite run probes the
// same names and skips them.
func (r *Runner) nextImagePath(dir, base string) string {
	key := dir + "\x00" + base
	r.seq[key]++
	return filepath.Join(dir, fmt.Sprintf("%s_%d.jpg", base, r.seq[key]))
}

func (r *Runner) processItem(ctx context.Context, it media.Item, table csvtable.Table, summary *Summary) {
	dec := r.resolve(it, table)
	r.postStatus(it, "processing", "")

	if r.cfg.MatchedOnly && !dec.matched {
		r.logger.Info().Str("item", it.RelPath).Msg("no CSV match, skipping")
		r.finish(it, summary, ReasonSkippedNoMatch)
		return
	}

	if r.cfg.DryRun {
		r.logger.Info().
			Str("item", it.RelPath).
			Str("out", dec.outPath).
			Str("title", dec.title).
			Strs("tags", dec.spec.Tags).
			Bool("matched", dec.matched).
			Msg("[dry] resolved")
		r.finish(it, summary, ReasonOK)
		return
	}

	if _, err := os.Stat(dec.outPath); err == nil && !r.cfg.Spec.Overwrite {
		r.logger.Info().Str("out", dec.outPath).Msg("destination exists, skipping")
		r.finish(it, summary, ReasonSkippedExisting)
		return
	}

	if err := os.MkdirAll(filepath.Dir(dec.outPath), 0o755); err != nil {
		r.logger.Error().Err(err).Str("item", it.RelPath).Msg("cannot create output directory")
		r.finish(it, summary, ReasonTranscodeFailed)
		return
	}

	var produceErr error
	switch it.Kind {
	case media.KindVideo:
		produceErr = r.transcoder.Run(ctx, it.AbsPath, dec.outPath, r.cfg.Spec)
	case media.KindImage:
		if strings.EqualFold(filepath.Ext(it.AbsPath), ".heic") {
			produceErr = r.images.ConvertFile(ctx, it.AbsPath, dec.outPath, r.cfg.ImageOpts)
		} else {
			produceErr = copyFile(it.AbsPath, dec.outPath)
		}
	}
	if produceErr != nil {
		if errors.Is(produceErr, transcode.ErrExists) {
			r.finish(it, summary, ReasonSkippedExisting)
			return
		}
		r.logger.Error().Err(produceErr).Str("item", it.RelPath).Msg("produce stage failed")
		r.finish(it, summary, ReasonTranscodeFailed)
		return
	}

	if err := r.meta.Write(ctx, dec.outPath, it.Kind, dec.spec); err != nil {
		r.logger.Error().Err(err).Str("item", it.RelPath).Msg("metadata stage failed")
		r.finish(it, summary, ReasonMetadataFailed)
		return
	}

	// Diagnostic only; a mismatch never fails the item.
	container := strings.TrimPrefix(strings.ToLower(filepath.Ext(dec.outPath)), ".")
	if _, err := r.meta.Verify(ctx, dec.outPath, container, dec.spec); err != nil {
		r.logger.Warn().Err(err).Str("item", it.RelPath).Msg("metadata verification unavailable")
	}

	r.logger.Info().Str("item", it.RelPath).Str("out", dec.outPath).Msg("done")
	r.finish(it, summary, ReasonOK)
}

func (r *Runner) finish(it media.Item, summary *Summary, reason Reason) {
	summary.record(it.RelPath, reason)
	r.postStatus(it, "done", string(reason))
}

func (r *Runner) postStatus(it media.Item, stage, detail string) {
	if r.board == nil {
		return
	}
	r.board.Update(it.RelPath, stage, detail)
}

func (r *Runner) logSummary(s *Summary) {
	evt := r.logger.Info().
		Str("run", s.RunID).
		Int("total", s.Total).
		Int("succeeded", s.Succeeded).
		Int("failed", s.Failed).
		Int("skipped", s.Skipped).
		Bool("cancelled", s.Cancelled)
	for reason, n := range s.ByReason {
		evt = evt.Int("reason_"+string(reason), n)
	}
	evt.Msg("run finished")
}

// copyFile duplicates src at dst without ever truncating an existing
// readable destination mid-write: data goes to a temp sibling first.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
